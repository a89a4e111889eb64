// Package dbtest opens a migrated Postgres pool for integration tests. Tests
// are skipped unless TEST_DATABASE_URL is set. Packages share the database,
// so run them with go test -p 1.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/delordemm1/dealer-dashboard/internal/database"
	"github.com/delordemm1/dealer-dashboard/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
)

// Pool returns a pool on a freshly migrated schema with all tables emptied.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	require.NoError(t, migrations.Run(ctx, db, "up"))

	_, err = pool.Exec(ctx, `TRUNCATE accounts, one_time_codes, magic_link_tokens`)
	require.NoError(t, err)
	return pool
}
