package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/cache"
	"github.com/delordemm1/dealer-dashboard/internal/metrics"
	appmw "github.com/delordemm1/dealer-dashboard/internal/middleware"
	"github.com/delordemm1/dealer-dashboard/internal/modules/account"
	"github.com/delordemm1/dealer-dashboard/internal/modules/auth"
	"github.com/delordemm1/dealer-dashboard/internal/notification/templates"
	"github.com/delordemm1/dealer-dashboard/internal/session"
	"github.com/stretchr/testify/require"
)

type discardMailer struct{}

func (discardMailer) SendLoginCode(context.Context, string, templates.LoginCodeData) error { return nil }

type testServer struct {
	handler  http.Handler
	accounts account.Service
	creds    *auth.Credentials
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	codec, err := session.NewCodec(strings.Repeat("e", 32))
	require.NoError(t, err)

	accounts := account.NewService(account.Config{Repo: account.NewMemoryRepository(), Logger: logger})
	creds := auth.NewCredentials(auth.NewMemoryStore(), auth.CredentialsConfig{FixedCode: "654321"})
	m := metrics.NewAuth()
	authSvc := auth.NewService(auth.Config{
		Accounts:     accounts,
		Credentials:  creds,
		Codec:        codec,
		Mailer:       discardMailer{},
		Cooldown:     cache.NewMemoryCooldown(),
		Metrics:      m,
		Logger:       logger,
		BaseURL:      "http://localhost:8080",
		DevMode:      true,
		CodeTTL:      10 * time.Minute,
		MagicLinkTTL: 15 * time.Minute,
	})

	h := New(Deps{
		Logger:  logger,
		Codec:   codec,
		Gate:    appmw.DefaultGateConfig(),
		Metrics: m,
		Auth:    auth.NewHandler(authSvc, logger, false),
		Account: account.NewHandler(accounts, logger),
	})
	return &testServer{handler: h, accounts: accounts, creds: creds}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func tokenCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSignupLoginAndProfile(t *testing.T) {
	s := newTestServer(t)
	_, err := s.accounts.Create(context.Background(), account.CreateInput{Email: "admin@x.com", FullName: "Admin"})
	require.NoError(t, err)

	rr := s.do(t, http.MethodPost, "/auth/request-otp", map[string]any{"email": "new@x.com", "fullName": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"dev":true`)

	rr = s.do(t, http.MethodPost, "/auth/verify-otp", map[string]any{"email": "new@x.com", "otp": "654321", "fullName": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"roles":["USER"]`)

	cookie := tokenCookie(t, rr)
	require.Equal(t, 604800, cookie.MaxAge)
	require.Contains(t, rr.Header().Get("Set-Cookie"), "Max-Age=604800")

	rr = s.do(t, http.MethodGet, "/account", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"fullName":"Ada Lovelace"`)

	rr = s.do(t, http.MethodGet, "/auth/login", nil, cookie)
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	require.Equal(t, "/dashboard", rr.Header().Get("Location"))

	rr = s.do(t, http.MethodPost, "/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, -1, tokenCookie(t, rr).MaxAge)
}

func TestUnknownEmailGetsGenericMessage(t *testing.T) {
	s := newTestServer(t)
	// Unknown emails short-circuit before the dev-mode reply.
	rr := s.do(t, http.MethodPost, "/auth/request-otp", map[string]any{"email": "ghost@x.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), auth.GenericRequestMessage)

	_, err := s.accounts.FindByEmail(context.Background(), "ghost@x.com")
	require.ErrorIs(t, err, account.ErrNotFound)
}

func TestUnknownMagicLink(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/auth/verify-magic-link", map[string]any{"token": strings.Repeat("0", 64)})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Empty(t, rr.Header().Values("Set-Cookie"))
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestMagicLinkSurvivesPrefetch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.accounts.Create(ctx, account.CreateInput{Email: "ada@x.com", FullName: "Ada"})
	require.NoError(t, err)
	link, err := s.creds.IssueMagicLink(ctx, "ada@x.com")
	require.NoError(t, err)

	rr := s.do(t, http.MethodGet, "/auth/magic-link?token="+link.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	require.Empty(t, rr.Header().Values("Set-Cookie"))

	rr = s.do(t, http.MethodPost, "/auth/verify-magic-link", map[string]any{"token": link.Token})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cookie := tokenCookie(t, rr)
	require.Equal(t, 2592000, cookie.MaxAge)

	rr = s.do(t, http.MethodGet, "/account", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestGateRedirectsProtectedRoutes(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/account", nil)
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	require.Equal(t, "/auth/login", rr.Header().Get("Location"))

	rr = s.do(t, http.MethodGet, "/account", nil, &http.Cookie{Name: auth.CookieName, Value: "forged"})
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
}

func TestValidationErrorsAreBadRequest(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/auth/verify-otp", map[string]any{"otp": "654321"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "ErrValidation")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"status":"ok"`)

	s.do(t, http.MethodPost, "/auth/request-otp", map[string]any{"email": "new@x.com", "fullName": "Ada"})
	rr = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "dashboard_auth_codes_issued_total")
}
