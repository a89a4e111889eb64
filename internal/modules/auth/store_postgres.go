package auth

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/delordemm1/dealer-dashboard/internal/database"
)

// postgresStore implements Store using pgx and squirrel.
type postgresStore struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewPostgresStore creates a Store over the one_time_codes and magic_link_tokens tables.
func NewPostgresStore(db database.DBTX) Store {
	return &postgresStore{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *postgresStore) InsertCode(ctx context.Context, c *OneTimeCode) error {
	sql, args, err := s.psql.Insert("one_time_codes").
		Columns("id", "email", "code_hash", "expires_at", "created_at", "consumed_at").
		Values(c.ID, c.Email, c.CodeHash, c.ExpiresAt, c.CreatedAt, c.ConsumedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, sql, args...)
	return err
}

// consumeCodeSQL picks the newest unconsumed match first and only then applies
// the expiry check, so an expired newest code is not bypassed by an older one.
// The consumed_at re-check in the UPDATE makes concurrent consumers race on the row lock.
const consumeCodeSQL = `
WITH candidate AS (
    SELECT id, expires_at
    FROM one_time_codes
    WHERE email = $1 AND code_hash = $2 AND consumed_at IS NULL
    ORDER BY created_at DESC, id DESC
    LIMIT 1
)
UPDATE one_time_codes c
SET consumed_at = $3
FROM candidate
WHERE c.id = candidate.id
  AND c.consumed_at IS NULL
  AND candidate.expires_at > $3
RETURNING c.id`

func (s *postgresStore) ConsumeCode(ctx context.Context, email, codeHash string, now time.Time) (bool, error) {
	var id string
	err := s.db.QueryRow(ctx, consumeCodeSQL, email, codeHash, now).Scan(&id)
	if err != nil {
		if database.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *postgresStore) InsertMagicLink(ctx context.Context, l *MagicLinkToken) error {
	sql, args, err := s.psql.Insert("magic_link_tokens").
		Columns("id", "email", "token_hash", "expires_at", "created_at", "consumed_at").
		Values(l.ID, l.Email, l.TokenHash, l.ExpiresAt, l.CreatedAt, l.ConsumedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, sql, args...)
	return err
}

func (s *postgresStore) ConsumeMagicLink(ctx context.Context, tokenHash string, now time.Time) (string, bool, error) {
	sql, args, err := s.psql.Update("magic_link_tokens").
		Set("consumed_at", now).
		Where(squirrel.Eq{"token_hash": tokenHash}).
		Where("consumed_at IS NULL").
		Where(squirrel.Gt{"expires_at": now}).
		Suffix("RETURNING email").
		ToSql()
	if err != nil {
		return "", false, err
	}

	var email string
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&email); err != nil {
		if database.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return email, true, nil
}

func (s *postgresStore) Purge(ctx context.Context, now, cutoff time.Time) (PurgeResult, error) {
	var res PurgeResult
	var err error
	if res.CodesDeleted, err = s.deleteStale(ctx, "one_time_codes", now, cutoff); err != nil {
		return res, err
	}
	if res.MagicLinksDeleted, err = s.deleteStale(ctx, "magic_link_tokens", now, cutoff); err != nil {
		return res, err
	}
	return res, nil
}

func (s *postgresStore) deleteStale(ctx context.Context, table string, now, cutoff time.Time) (int64, error) {
	sql, args, err := s.psql.Delete(table).
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.Lt{"created_at": cutoff},
		}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
