package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/delordemm1/dealer-dashboard/internal/contextx"
	"github.com/delordemm1/dealer-dashboard/internal/session"
)

// SessionCookie is the cookie the gate reads the session token from.
const SessionCookie = "token"

// GateConfig classifies request paths. A prefix matches the path itself and
// anything below it ("/dealers" matches "/dealers/42" but not "/dealership").
type GateConfig struct {
	// Public paths always pass through.
	Public []string
	// GuestOnly paths redirect authenticated callers to HomePath. They are public otherwise.
	GuestOnly []string
	// Protected paths require a valid session.
	Protected []string

	LoginPath string
	HomePath  string
}

// DefaultGateConfig is the route classification of the dashboard.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Public: []string{
			"/auth/login",
			"/auth/signup",
			"/auth/magic-link",
			"/auth/request-otp",
			"/auth/verify-otp",
			"/auth/verify-magic-link",
		},
		GuestOnly: []string{"/auth/login", "/auth/signup"},
		Protected: []string{"/dashboard", "/account", "/settings", "/dealers"},
		LoginPath: "/auth/login",
		HomePath:  "/dashboard",
	}
}

// Gate verifies the session cookie on every request. Public paths are checked
// before protected ones; paths in neither set pass through untouched.
func Gate(cfg GateConfig, codec *session.Codec, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if matchAny(cfg.Public, path) {
				if matchAny(cfg.GuestOnly, path) {
					if _, ok := verifiedIdentity(r, codec); ok {
						http.Redirect(w, r, cfg.HomePath, http.StatusTemporaryRedirect)
						return
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if !matchAny(cfg.Protected, path) {
				next.ServeHTTP(w, r)
				return
			}

			id, ok := verifiedIdentity(r, codec)
			if !ok {
				logger.Debug("gate rejected request", "path", path)
				http.Redirect(w, r, cfg.LoginPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextx.WithIdentity(r.Context(), id)))
		})
	}
}

func verifiedIdentity(r *http.Request, codec *session.Codec) (contextx.Identity, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return contextx.Identity{}, false
	}
	claims, ok := codec.Verify(c.Value)
	if !ok {
		return contextx.Identity{}, false
	}
	return claims.Identity(), true
}

func matchAny(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
