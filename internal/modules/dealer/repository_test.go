package dealer

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	client, err := database.NewMongoClient(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("dealer_dashboard_test_" + uuid.NewString()[:8])
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	repo, err := NewMongoRepository(ctx, db)
	require.NoError(t, err)

	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, &Dealer{DealerID: "a", Region: RegionUSA, Name: "A", CreatedAt: base}))
	require.NoError(t, repo.Insert(ctx, &Dealer{DealerID: "b", Region: RegionUK, Name: "B", CreatedAt: base.Add(time.Minute)}))
	require.ErrorIs(t, repo.Insert(ctx, &Dealer{DealerID: "a", Name: "dup", CreatedAt: base}), ErrExists)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "b", all[0].DealerID)

	got, err := repo.FindByDealerID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "A", got.Name)
	require.True(t, got.CreatedAt.Equal(base))

	got.Name = "A2"
	require.NoError(t, repo.Replace(ctx, got))
	got, err = repo.FindByDealerID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "A2", got.Name)

	require.ErrorIs(t, repo.Replace(ctx, &Dealer{DealerID: "zz"}), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "a"))
	require.ErrorIs(t, repo.Delete(ctx, "a"), ErrNotFound)
	_, err = repo.FindByDealerID(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}
