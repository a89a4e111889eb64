package auth

import (
	"context"
	"time"
)

// Store persists one-time codes and magic-link tokens.
//
// The Consume methods must check and mark in one indivisible step: of two
// concurrent calls for the same credential at most one may report success.
type Store interface {
	InsertCode(ctx context.Context, c *OneTimeCode) error
	// ConsumeCode marks the newest unconsumed code for email with the given
	// digest as consumed, provided it has not expired at now.
	ConsumeCode(ctx context.Context, email, codeHash string, now time.Time) (bool, error)

	InsertMagicLink(ctx context.Context, l *MagicLinkToken) error
	// ConsumeMagicLink marks an unconsumed, unexpired token consumed and returns its email.
	ConsumeMagicLink(ctx context.Context, tokenHash string, now time.Time) (string, bool, error)

	// Purge deletes codes and links that expired before now or were created before cutoff.
	Purge(ctx context.Context, now, cutoff time.Time) (PurgeResult, error)
}
