// Package session signs and verifies the stateless session token carried in the
// "token" cookie. Tokens are HS256 JWTs over a closed, versioned claim set.
package session

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/contextx"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsVersion is the only claim layout Verify accepts.
const ClaimsVersion = 1

// MinSecretLength is the minimum accepted signing secret length in bytes.
const MinSecretLength = 32

// Session horizons per issuance path.
const (
	CodeSessionTTL      = 7 * 24 * time.Hour
	MagicLinkSessionTTL = 30 * 24 * time.Hour
)

// ErrSecretTooShort is returned by NewCodec for secrets under MinSecretLength.
var ErrSecretTooShort = fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)

// Claims is the complete payload of a session token. Unknown or missing fields
// make the token invalid.
type Claims struct {
	Version   int              `json:"ver"`
	Subject   string           `json:"sub"`
	Email     string           `json:"email"`
	Roles     []string         `json:"roles"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                   { return "", nil }
func (c *Claims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// Identity returns the request identity carried by the claims.
func (c *Claims) Identity() contextx.Identity {
	return contextx.Identity{AccountID: c.Subject, Email: c.Email, Roles: append([]string(nil), c.Roles...)}
}

func (c *Claims) complete() bool {
	return c.Version == ClaimsVersion &&
		c.Subject != "" &&
		c.Email != "" &&
		len(c.Roles) > 0 &&
		c.IssuedAt != nil &&
		c.ExpiresAt != nil
}

// Codec mints and verifies session tokens with a process-wide secret.
type Codec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec returns a Codec, rejecting secrets shorter than MinSecretLength.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	c := &Codec{secret: []byte(secret), now: time.Now}
	c.parser = c.newParser()
	return c, nil
}

// WithClock replaces the time source used for issuing and expiry checks.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	c.parser = c.newParser()
	return c
}

func (c *Codec) newParser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
}

// Sign mints a token for id that expires ttl from now.
func (c *Codec) Sign(id contextx.Identity, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("session ttl must be positive")
	}
	now := c.now().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := &Claims{
		Version:   ClaimsVersion,
		Subject:   id.AccountID,
		Email:     id.Email,
		Roles:     id.Roles,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	if !claims.complete() {
		return "", time.Time{}, errors.New("session identity is incomplete")
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, exp, nil
}

// Verify returns the claims of a valid token. Any failure (malformed, bad
// signature, expired, unknown or missing claims) yields false with no reason.
func (c *Codec) Verify(token string) (*Claims, bool) {
	if token == "" {
		return nil, false
	}

	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}

	if !strictPayload(token) || !claims.complete() {
		return nil, false
	}
	return claims, true
}

// strictPayload re-decodes the payload rejecting fields outside Claims.
func strictPayload(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	raw, err := base64.RawURLEncoding.Strict().DecodeString(parts[1])
	if err != nil {
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var strict Claims
	if err := dec.Decode(&strict); err != nil {
		return false
	}
	return !dec.More()
}
