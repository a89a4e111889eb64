package account

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/validation"
	"github.com/stretchr/testify/require"
)

func newTestService(repo Repository) Service {
	return NewService(Config{
		Repo:   repo,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) },
	})
}

func TestCreate_FirstAccountIsElevated(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Email: "root@example.com", FullName: "Root", Roles: []string{RoleUser}})
	require.NoError(t, err)
	require.Equal(t, []string{RoleSuperAdmin}, first.Roles)

	second, err := svc.Create(ctx, CreateInput{Email: "ada@example.com", FullName: "Ada Lovelace"})
	require.NoError(t, err)
	require.Equal(t, []string{RoleUser}, second.Roles)

	third, err := svc.Create(ctx, CreateInput{Email: "grace@example.com", FullName: "Grace", Roles: []string{RoleAdmin}})
	require.NoError(t, err)
	require.Equal(t, []string{RoleAdmin}, third.Roles)
}

func TestCreate_ConcurrentFirstAccounts(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	var wg sync.WaitGroup
	results := make([]*Account, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Create(context.Background(), CreateInput{
				Email:    "user" + string(rune('a'+i)) + "@example.com",
				FullName: "User",
			})
		}(i)
	}
	wg.Wait()

	elevated := 0
	for i, a := range results {
		require.NoError(t, errs[i])
		if a.HasRole(RoleSuperAdmin) {
			elevated++
		}
	}
	require.Equal(t, 1, elevated)
}

func TestCreate_DuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Email: "ada@example.com", FullName: "Ada"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Email: " ada@example.com ", FullName: "Ada again"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestCreate_EmailIsCaseSensitive(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Email: "ada@example.com", FullName: "Ada"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Email: "Ada@example.com", FullName: "Ada"})
	require.NoError(t, err)

	_, err = svc.FindByEmail(ctx, "ADA@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	var verr *validation.ValidationError
	_, err := svc.Create(ctx, CreateInput{Email: "not-an-email", FullName: "Ada"})
	require.ErrorAs(t, err, &verr)

	_, err = svc.Create(ctx, CreateInput{Email: "ada@example.com", FullName: "   "})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields(), "fullName")

	_, err = svc.Create(ctx, CreateInput{Email: "ada@example.com", FullName: strings.Repeat("a", FullNameMax+1)})
	require.ErrorAs(t, err, &verr)

	_, err = svc.Create(ctx, CreateInput{Email: "ada@example.com", FullName: "Ada", Roles: []string{"OWNER"}})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Email: "ada@example.com", FullName: "Ada"})
	require.NoError(t, err)
	require.Nil(t, a.UpdatedAt)

	updated, err := svc.UpdateProfile(ctx, a.ID, "  Ada Lovelace  ")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", updated.FullName)
	require.NotNil(t, updated.UpdatedAt)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", got.FullName)
}

func TestUpdateProfile_UnknownAccount(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	_, err := svc.UpdateProfile(context.Background(), "0190b5d0-0000-7000-8000-00000000dead", "Ada")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeFullName(t *testing.T) {
	name, err := NormalizeFullName("  Zoë O'Brien-Smith ")
	require.NoError(t, err)
	require.Equal(t, "Zoë O'Brien-Smith", name)

	_, err = NormalizeFullName(strings.Repeat("é", FullNameMax))
	require.NoError(t, err, "bounds are counted in characters")

	_, err = NormalizeFullName("")
	require.Error(t, err)
}
