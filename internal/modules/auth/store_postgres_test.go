package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/database/dbtest"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_CodeLifecycle(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	clock := newTestClock()
	creds := newTestCredentials(NewPostgresStore(pool), clock)

	first, err := creds.IssueCode(ctx, "ada@example.com")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := creds.IssueCode(ctx, "ada@example.com")
	require.NoError(t, err)

	var stored string
	require.NoError(t, pool.QueryRow(ctx, `SELECT code_hash FROM one_time_codes WHERE email = $1 LIMIT 1`, "ada@example.com").Scan(&stored))
	require.NotEqual(t, first.Code, stored, "only digests are persisted")

	ok, err := creds.VerifyCode(ctx, "ada@example.com", second.Code)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = creds.VerifyCode(ctx, "ada@example.com", second.Code)
	require.NoError(t, err)
	if second.Code != first.Code {
		require.False(t, ok)
	}

	clock.Advance(10 * time.Minute)
	ok, err = creds.VerifyCode(ctx, "ada@example.com", first.Code)
	require.NoError(t, err)
	require.False(t, ok, "expired")
}

func TestPostgresStore_ConcurrentConsume(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	clock := newTestClock()
	creds := newTestCredentials(NewPostgresStore(pool), clock)

	code, err := creds.IssueCode(ctx, "ada@example.com")
	require.NoError(t, err)
	link, err := creds.IssueMagicLink(ctx, "ada@example.com")
	require.NoError(t, err)

	var codeWins, linkWins atomic.Int32
	errs := make(chan error, 32)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := creds.VerifyCode(ctx, "ada@example.com", code.Code)
			if err != nil {
				errs <- err
			}
			if ok {
				codeWins.Add(1)
			}
			_, ok, err = creds.VerifyMagicLink(ctx, link.Token)
			if err != nil {
				errs <- err
			}
			if ok {
				linkWins.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, codeWins.Load())
	require.EqualValues(t, 1, linkWins.Load())
}

func TestPostgresStore_Purge(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	clock := newTestClock()
	creds := newTestCredentials(NewPostgresStore(pool), clock)

	_, err := creds.IssueCode(ctx, "ada@example.com")
	require.NoError(t, err)
	_, err = creds.IssueMagicLink(ctx, "ada@example.com")
	require.NoError(t, err)
	clock.Advance(12 * time.Minute)
	_, err = creds.IssueCode(ctx, "ada@example.com")
	require.NoError(t, err)

	res, err := creds.PurgeExpired(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, PurgeResult{CodesDeleted: 1}, res)

	clock.Advance(25 * time.Hour)
	res, err = creds.PurgeExpired(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, PurgeResult{CodesDeleted: 1, MagicLinksDeleted: 1}, res)
}
