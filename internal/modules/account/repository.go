package account

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/delordemm1/dealer-dashboard/internal/database"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// Repository defines the persistence operations of the account module.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdateFullName(ctx context.Context, id, fullName string, at time.Time) (*Account, error)
	Count(ctx context.Context) (int, error)

	// WithinCreateLock runs fn while holding the account-creation lock so the
	// "first account" decision and the insert cannot interleave with another creation.
	WithinCreateLock(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

// createLockKey identifies the advisory lock serializing account creation.
const createLockKey int64 = 0x6163636f756e74 // "account"

var accountColumns = []string{"id", "email", "full_name", "roles", "created_at", "updated_at"}

// repository implements Repository using pgx and squirrel.
type repository struct {
	db    database.DBTX
	begin database.Beginner
	psql  squirrel.StatementBuilderType
}

// NewRepository creates a Postgres account repository. pool must also start
// transactions (a *pgxpool.Pool does).
func NewRepository(pool interface {
	database.DBTX
	database.Beginner
}) Repository {
	return &repository{
		db:    pool,
		begin: pool,
		psql:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, a *Account) error {
	query, args, err := r.psql.Insert("accounts").
		Columns(accountColumns...).
		Values(a.ID, a.Email, a.FullName, a.Roles, a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailExists.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

func (r *repository) FindByID(ctx context.Context, id string) (*Account, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

func (r *repository) UpdateFullName(ctx context.Context, id, fullName string, at time.Time) (*Account, error) {
	query, args, err := r.psql.Update("accounts").
		Set("full_name", fullName).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, email, full_name, roles, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	var a Account
	if err := pgxscan.Get(ctx, r.db, &a, query, args...); err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	query, args, err := r.psql.Select("count(*)").From("accounts").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) WithinCreateLock(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	if r.begin == nil {
		// Already inside a transaction.
		return fn(ctx, r)
	}
	return database.WithTx(ctx, r.begin, func(ctx context.Context, tx database.DBTX) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", createLockKey); err != nil {
			return err
		}
		return fn(ctx, &repository{db: tx, psql: r.psql})
	})
}

// findOne is a helper method to find a single account by a given condition.
func (r *repository) findOne(ctx context.Context, condition squirrel.Sqlizer) (*Account, error) {
	query, args, err := r.psql.Select(accountColumns...).
		From("accounts").
		Where(condition).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var a Account
	if err := pgxscan.Get(ctx, r.db, &a, query, args...); err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &a, nil
}
