package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) (humatest.TestAPI, *harness) {
	t.Helper()
	h := newHarness(t, true)
	_, api := humatest.New(t)
	NewHandler(h.svc, slog.New(slog.NewTextHandler(io.Discard, nil)), true).RegisterRoutes(api)
	return api, h
}

func sessionCookieFrom(t *testing.T, header http.Header) *http.Cookie {
	t.Helper()
	for _, c := range (&http.Response{Header: header}).Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in %v", CookieName, header.Values("Set-Cookie"))
	return nil
}

func TestRequestOTPHandler(t *testing.T) {
	api, _ := setupHandler(t)

	resp := api.Post("/auth/request-otp", map[string]any{"email": "new@x.com", "fullName": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, resp.Code)
	var body RequestOTPResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body.Body))
	require.True(t, body.Body.Success)
	require.Equal(t, "OTP generated successfully", body.Body.Message)
	require.True(t, body.Body.Dev)
	require.Empty(t, resp.Header().Values("Set-Cookie"))
}

func TestRequestOTPHandler_InvalidEmail(t *testing.T) {
	api, _ := setupHandler(t)

	resp := api.Post("/auth/request-otp", map[string]any{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ErrValidation")
}

func TestVerifyOTPHandler_Signup(t *testing.T) {
	api, h := setupHandler(t)
	h.seedAccount(t, "root@example.com", "Root")

	resp := api.Post("/auth/request-otp", map[string]any{"email": "new@x.com", "fullName": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Post("/auth/verify-otp", map[string]any{"email": "new@x.com", "otp": "654321", "fullName": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, resp.Code)

	var body VerifyOTPResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body.Body))
	require.True(t, body.Body.Success)
	require.Equal(t, "Login successful", body.Body.Message)
	require.Equal(t, "Ada Lovelace", body.Body.User.FullName)
	require.Equal(t, []string{"USER"}, body.Body.User.Roles)

	cookie := sessionCookieFrom(t, resp.Header())
	require.Equal(t, 604800, cookie.MaxAge)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, "/", cookie.Path)

	claims, ok := h.codec.Verify(cookie.Value)
	require.True(t, ok)
	require.Equal(t, body.Body.User.UserID, claims.Subject)
}

func TestVerifyOTPHandler_Failures(t *testing.T) {
	api, _ := setupHandler(t)

	resp := api.Post("/auth/verify-otp", map[string]any{"email": "new@x.com", "otp": "654321"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Contains(t, resp.Body.String(), "ErrInvalidCode")
	require.Empty(t, resp.Header().Values("Set-Cookie"))

	resp = api.Post("/auth/request-otp", map[string]any{"email": "new@x.com", "fullName": "Ada"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = api.Post("/auth/verify-otp", map[string]any{"email": "new@x.com", "otp": "654321"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ErrFullNameRequired")

	resp = api.Post("/auth/verify-otp", map[string]any{"email": "new@x.com", "otp": "12ab"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestVerifyMagicLinkHandler(t *testing.T) {
	api, h := setupHandler(t)
	h.seedAccount(t, "ada@example.com", "Ada")

	link, err := h.svc.(*service).cfg.Credentials.IssueMagicLink(t.Context(), "ada@example.com")
	require.NoError(t, err)

	resp := api.Post("/auth/verify-magic-link", map[string]any{"token": link.Token})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"success":true`)
	require.Equal(t, 2592000, sessionCookieFrom(t, resp.Header()).MaxAge)

	resp = api.Post("/auth/verify-magic-link", map[string]any{"token": link.Token})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Empty(t, resp.Header().Values("Set-Cookie"))

	resp = api.Post("/auth/verify-magic-link", map[string]any{"token": strings.Repeat("a", 64)})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutHandler(t *testing.T) {
	api, _ := setupHandler(t)

	resp := api.Post("/auth/logout")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Logged out successfully")

	cookie := sessionCookieFrom(t, resp.Header())
	require.Empty(t, cookie.Value)
	require.Equal(t, -1, cookie.MaxAge)
}

func TestOpenMagicLinkHandler_DoesNotConsumeToken(t *testing.T) {
	api, h := setupHandler(t)
	h.seedAccount(t, "ada@example.com", "Ada")

	link, err := h.svc.(*service).cfg.Credentials.IssueMagicLink(t.Context(), "ada@example.com")
	require.NoError(t, err)

	// A mail scanner opens the link first, without cookies.
	for range 2 {
		resp := api.Get("/auth/magic-link?token=" + link.Token)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "text/html; charset=utf-8", resp.Header().Get("Content-Type"))
		require.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
		require.Empty(t, resp.Header().Values("Set-Cookie"))
		require.Contains(t, resp.Body.String(), `fetch("/auth/verify-magic-link"`)
		require.NotContains(t, resp.Body.String(), link.Token)
	}

	resp := api.Post("/auth/verify-magic-link", map[string]any{"token": link.Token})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 2592000, sessionCookieFrom(t, resp.Header()).MaxAge)

	resp = api.Post("/auth/verify-magic-link", map[string]any{"token": link.Token})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
