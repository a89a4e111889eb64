package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CredentialsConfig tunes credential lifetimes.
type CredentialsConfig struct {
	CodeTTL      time.Duration
	MagicLinkTTL time.Duration
	// FixedCode, when set, replaces the random code. Dev mode only.
	FixedCode string
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Credentials issues and verifies one-time codes and magic-link tokens.
// Verification misses are reported as false, never as errors.
type Credentials struct {
	store Store
	cfg   CredentialsConfig
}

func NewCredentials(store Store, cfg CredentialsConfig) *Credentials {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.MagicLinkTTL <= 0 {
		cfg.MagicLinkTTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Credentials{store: store, cfg: cfg}
}

func (c *Credentials) now() time.Time { return c.cfg.Now().UTC() }

// IssueCode stores a new code for email. Earlier outstanding codes stay valid.
func (c *Credentials) IssueCode(ctx context.Context, email string) (*IssuedCode, error) {
	code := c.cfg.FixedCode
	if code == "" {
		var err error
		if code, err = generateNumericCode(); err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := c.now()
	rec := &OneTimeCode{
		ID:        id.String(),
		Email:     email,
		CodeHash:  hashToken(code),
		ExpiresAt: now.Add(c.cfg.CodeTTL),
		CreatedAt: now,
	}
	if err := c.store.InsertCode(ctx, rec); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}
	return &IssuedCode{Email: email, Code: code, ExpiresAt: rec.ExpiresAt}, nil
}

// IssueMagicLink stores a new 256-bit link token for email.
func (c *Credentials) IssueMagicLink(ctx context.Context, email string) (*IssuedMagicLink, error) {
	token, err := generateSecureToken(magicTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate magic token: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := c.now()
	rec := &MagicLinkToken{
		ID:        id.String(),
		Email:     email,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(c.cfg.MagicLinkTTL),
		CreatedAt: now,
	}
	if err := c.store.InsertMagicLink(ctx, rec); err != nil {
		return nil, fmt.Errorf("store magic link: %w", err)
	}
	return &IssuedMagicLink{Email: email, Token: token, ExpiresAt: rec.ExpiresAt}, nil
}

// VerifyCode consumes the newest matching code. It succeeds at most once per code.
func (c *Credentials) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	if email == "" || code == "" {
		return false, nil
	}
	return c.store.ConsumeCode(ctx, email, hashToken(code), c.now())
}

// VerifyMagicLink consumes token and returns the email it was issued for.
func (c *Credentials) VerifyMagicLink(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	return c.store.ConsumeMagicLink(ctx, hashToken(token), c.now())
}

// PurgeExpired deletes expired credentials and any older than olderThanDays,
// consumed or not.
func (c *Credentials) PurgeExpired(ctx context.Context, olderThanDays int) (PurgeResult, error) {
	if olderThanDays <= 0 {
		return PurgeResult{}, errors.New("retention must be at least one day")
	}
	now := c.now()
	return c.store.Purge(ctx, now, now.AddDate(0, 0, -olderThanDays))
}
