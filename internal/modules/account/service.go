package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/apperr"
	"github.com/delordemm1/dealer-dashboard/internal/validation"
	"github.com/google/uuid"
)

// Service resolves, creates and updates accounts.
type Service interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Get(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, in CreateInput) (*Account, error)
	UpdateProfile(ctx context.Context, id string, fullName string) (*Account, error)
}

// CreateInput describes a new account. Roles may be empty.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName"`
	Roles    []string
}

type service struct {
	repo    Repository
	logger  *slog.Logger
	nowFunc func() time.Time
}

// Config holds the dependencies for the account service.
type Config struct {
	Repo   Repository
	Logger *slog.Logger
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

func NewService(cfg Config) Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: cfg.Repo, logger: cfg.Logger, nowFunc: now}
}

func (s *service) FindByEmail(ctx context.Context, email string) (*Account, error) {
	a, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, s.mapRepoError("find account by email", err)
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, id string) (*Account, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("find account by id", err)
	}
	return a, nil
}

// Create inserts a new account. The first account in the system always gets
// RoleSuperAdmin; later accounts get the requested roles or RoleUser.
func (s *service) Create(ctx context.Context, in CreateInput) (*Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}
	fullName, err := NormalizeFullName(in.FullName)
	if err != nil {
		return nil, err
	}
	for _, role := range in.Roles {
		if !knownRole(role) {
			return nil, ErrInvalidRole.WithDetail("unknown role " + role)
		}
	}

	var created *Account
	err = s.repo.WithinCreateLock(ctx, func(ctx context.Context, repo Repository) error {
		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}

		roles := in.Roles
		switch {
		case n == 0:
			roles = []string{RoleSuperAdmin}
		case len(roles) == 0:
			roles = []string{RoleUser}
		}

		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a := &Account{
			ID:        id.String(),
			Email:     in.Email,
			FullName:  fullName,
			Roles:     roles,
			CreatedAt: s.nowFunc().UTC(),
		}
		if err := repo.Create(ctx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, s.mapRepoError("create account", err)
	}

	s.logger.Info("account created", "account_id", created.ID, "roles", created.Roles)
	return created, nil
}

func (s *service) UpdateProfile(ctx context.Context, id string, fullName string) (*Account, error) {
	name, err := NormalizeFullName(fullName)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.UpdateFullName(ctx, id, name, s.nowFunc().UTC())
	if err != nil {
		return nil, s.mapRepoError("update account", err)
	}
	s.logger.Info("account profile updated", "account_id", id)
	return a, nil
}

// mapRepoError keeps known domain errors and hides everything else behind ErrInternal.
func (s *service) mapRepoError(op string, err error) error {
	var de *apperr.DomainError
	if errors.As(err, &de) && de.Status() < 500 {
		return err
	}
	s.logger.Error(op+" failed", "error", err)
	return ErrInternal.WithCause(err)
}
