package contextx

import "context"

// Key is a private type to avoid collisions in request context keys.
type Key string

// IdentityKey is the context key holding the verified session Identity.
const IdentityKey Key = "identity"

// Identity is the verified caller, derived from a valid session token.
type Identity struct {
	AccountID string
	Email     string
	Roles     []string
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom returns the identity attached by the request gate, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}
