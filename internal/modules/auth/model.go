package auth

import "time"

// OneTimeCode is a short numeric login code. Only its digest is stored.
type OneTimeCode struct {
	ID         string     `db:"id"`
	Email      string     `db:"email"`
	CodeHash   string     `db:"code_hash"`
	ExpiresAt  time.Time  `db:"expires_at"`
	CreatedAt  time.Time  `db:"created_at"`
	ConsumedAt *time.Time `db:"consumed_at"`
}

// MagicLinkToken is a single-use login link token. Only its digest is stored.
type MagicLinkToken struct {
	ID         string     `db:"id"`
	Email      string     `db:"email"`
	TokenHash  string     `db:"token_hash"`
	ExpiresAt  time.Time  `db:"expires_at"`
	CreatedAt  time.Time  `db:"created_at"`
	ConsumedAt *time.Time `db:"consumed_at"`
}

// IssuedCode is returned to the caller right after issuance; Code is the plaintext.
type IssuedCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// IssuedMagicLink carries the plaintext token of a freshly issued link.
type IssuedMagicLink struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// PurgeResult counts the credentials deleted by one purge run.
type PurgeResult struct {
	CodesDeleted      int64
	MagicLinksDeleted int64
}

func (r PurgeResult) Total() int64 { return r.CodesDeleted + r.MagicLinksDeleted }
