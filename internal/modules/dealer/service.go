package dealer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/apperr"
	"github.com/delordemm1/dealer-dashboard/internal/validation"
)

// Service manages the tracked dealers.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*Dealer, error)
	List(ctx context.Context) ([]*Dealer, error)
	Get(ctx context.Context, dealerID string) (*Dealer, error)
	Refresh(ctx context.Context, dealerID, region string) (*Dealer, error)
	Delete(ctx context.Context, dealerID string) error
}

type CreateInput struct {
	DealerID string `json:"dealerId" validate:"required,max=64"`
	Region   string `json:"region" validate:"required,oneof=usa uk"`
}

// Config holds the dependencies for the dealer service.
type Config struct {
	Repo   Repository
	Lookup Lookup
	Logger *slog.Logger
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

type service struct {
	repo    Repository
	lookup  Lookup
	logger  *slog.Logger
	nowFunc func() time.Time
}

func NewService(cfg Config) Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: cfg.Repo, lookup: cfg.Lookup, logger: cfg.Logger, nowFunc: now}
}

// Create looks the dealer up upstream and stores the snapshot. A dealer that
// is already tracked is rejected before any upstream call.
func (s *service) Create(ctx context.Context, in CreateInput) (*Dealer, error) {
	in.DealerID = strings.TrimSpace(in.DealerID)
	in.Region = strings.ToLower(strings.TrimSpace(in.Region))
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByDealerID(ctx, in.DealerID); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, s.mapRepoError("find dealer", err)
	}

	listing, err := s.lookup.FetchDealer(ctx, in.DealerID, in.Region)
	if err != nil {
		s.logger.Warn("dealer lookup failed", "dealer_id", in.DealerID, "region", in.Region, "error", err)
		return nil, upstreamError(err)
	}

	d := listing.toDealer(in.DealerID, in.Region)
	d.CreatedAt = s.nowFunc().UTC()
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, s.mapRepoError("insert dealer", err)
	}
	s.logger.Info("dealer created", "dealer_id", d.DealerID, "region", d.Region)
	return d, nil
}

func (s *service) List(ctx context.Context) ([]*Dealer, error) {
	dealers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.mapRepoError("list dealers", err)
	}
	return dealers, nil
}

func (s *service) Get(ctx context.Context, dealerID string) (*Dealer, error) {
	d, err := s.repo.FindByDealerID(ctx, dealerID)
	if err != nil {
		return nil, s.mapRepoError("find dealer", err)
	}
	return d, nil
}

// Refresh re-fetches a tracked dealer. An empty region reuses the stored one.
func (s *service) Refresh(ctx context.Context, dealerID, region string) (*Dealer, error) {
	current, err := s.repo.FindByDealerID(ctx, dealerID)
	if err != nil {
		return nil, s.mapRepoError("find dealer", err)
	}

	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		region = current.Region
	}
	if !validRegion(region) {
		return nil, ErrInvalidRegion
	}

	listing, err := s.lookup.FetchDealer(ctx, dealerID, region)
	if err != nil {
		s.logger.Warn("dealer lookup failed", "dealer_id", dealerID, "region", region, "error", err)
		return nil, upstreamError(err)
	}

	d := listing.toDealer(dealerID, region)
	d.CreatedAt = current.CreatedAt
	now := s.nowFunc().UTC()
	d.UpdatedAt = &now
	if err := s.repo.Replace(ctx, d); err != nil {
		return nil, s.mapRepoError("replace dealer", err)
	}
	s.logger.Info("dealer refreshed", "dealer_id", dealerID, "region", region)
	return d, nil
}

func (s *service) Delete(ctx context.Context, dealerID string) error {
	if err := s.repo.Delete(ctx, dealerID); err != nil {
		return s.mapRepoError("delete dealer", err)
	}
	s.logger.Info("dealer deleted", "dealer_id", dealerID)
	return nil
}

func upstreamError(err error) error {
	if errors.Is(err, ErrUpstream) {
		return err
	}
	return ErrUpstream.WithCause(err)
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
