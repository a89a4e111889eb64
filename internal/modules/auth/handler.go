package auth

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/delordemm1/dealer-dashboard/internal/httpx"
)

//go:embed pages/magic_link.html
var magicLinkPage []byte

// Handler holds the dependencies for the auth module's HTTP handlers.
type Handler struct {
	service      Service
	logger       *slog.Logger
	secureCookie bool
}

// NewHandler creates a new handler for the auth module. secureCookie marks
// the session cookie Secure (production).
func NewHandler(service Service, logger *slog.Logger, secureCookie bool) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// RegisterRoutes sets up the routing for the auth module.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "request-otp",
		Method:      http.MethodPost,
		Path:        "/auth/request-otp",
		Summary:     "Request a login code and magic link",
		Tags:        []string{"Auth"},
	}, h.RequestOTPHandler)

	huma.Register(api, huma.Operation{
		OperationID: "verify-otp",
		Method:      http.MethodPost,
		Path:        "/auth/verify-otp",
		Summary:     "Verify a login code and start a session",
		Tags:        []string{"Auth"},
	}, h.VerifyOTPHandler)

	huma.Register(api, huma.Operation{
		OperationID: "verify-magic-link",
		Method:      http.MethodPost,
		Path:        "/auth/verify-magic-link",
		Summary:     "Verify a magic link token and start a session",
		Tags:        []string{"Auth"},
	}, h.VerifyMagicLinkHandler)

	huma.Register(api, huma.Operation{
		OperationID: "open-magic-link",
		Method:      http.MethodGet,
		Path:        "/auth/magic-link",
		Summary:     "Show the confirm page for an emailed magic link",
		Description: "Does not consume the token. The page POSTs it to /auth/verify-magic-link when the user continues.",
		Tags:        []string{"Auth"},
	}, h.OpenMagicLinkHandler)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Clear the session cookie",
		Tags:        []string{"Auth"},
	}, h.LogoutHandler)
}

// --- DTOs ---

type RequestOTPRequest struct {
	Body struct {
		Email    string `json:"email" maxLength:"320" doc:"Email address to send the code to"`
		FullName string `json:"fullName,omitempty" maxLength:"200" doc:"Set only when signing up"`
	}
}

type RequestOTPResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Dev     bool   `json:"dev,omitempty"`
	}
}

type VerifyOTPRequest struct {
	Body struct {
		Email    string `json:"email" maxLength:"320"`
		OTP      string `json:"otp" maxLength:"6"`
		FullName string `json:"fullName,omitempty" maxLength:"200" doc:"Required when the email has no account yet"`
	}
}

// SessionUser is the identity returned after a successful code login.
type SessionUser struct {
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Roles    []string `json:"roles"`
}

type VerifyOTPResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		User    SessionUser `json:"user"`
	}
}

type VerifyMagicLinkRequest struct {
	Body struct {
		Token string `json:"token" maxLength:"256"`
	}
}

type VerifyMagicLinkResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

type OpenMagicLinkRequest struct {
	Token string `query:"token" maxLength:"256"`
}

type OpenMagicLinkResponse struct {
	ContentType    string `header:"Content-Type"`
	CacheControl   string `header:"Cache-Control"`
	ReferrerPolicy string `header:"Referrer-Policy"`
	Body           []byte
}

type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

// --- Handlers ---

func (h *Handler) RequestOTPHandler(ctx context.Context, input *RequestOTPRequest) (*RequestOTPResponse, error) {
	res, err := h.service.RequestCode(ctx, RequestCodeInput{
		Email:    input.Body.Email,
		FullName: input.Body.FullName,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	var resp RequestOTPResponse
	resp.Body.Success = true
	resp.Body.Message = res.Message
	resp.Body.Dev = res.Dev
	return &resp, nil
}

func (h *Handler) VerifyOTPHandler(ctx context.Context, input *VerifyOTPRequest) (*VerifyOTPResponse, error) {
	res, err := h.service.VerifyCode(ctx, VerifyCodeInput{
		Email:    input.Body.Email,
		Code:     input.Body.OTP,
		FullName: input.Body.FullName,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	var resp VerifyOTPResponse
	resp.SetCookie = sessionCookie(res.Token, res.TTL, h.secureCookie)
	resp.Body.Success = true
	resp.Body.Message = "Login successful"
	resp.Body.User = SessionUser{
		UserID:   res.Account.ID,
		Email:    res.Account.Email,
		FullName: res.Account.FullName,
		Roles:    res.Account.Roles,
	}
	return &resp, nil
}

func (h *Handler) VerifyMagicLinkHandler(ctx context.Context, input *VerifyMagicLinkRequest) (*VerifyMagicLinkResponse, error) {
	res, err := h.service.VerifyMagicLink(ctx, input.Body.Token)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	var resp VerifyMagicLinkResponse
	resp.SetCookie = sessionCookie(res.Token, res.TTL, h.secureCookie)
	resp.Body.Success = true
	return &resp, nil
}

// OpenMagicLinkHandler serves the link from the login email. Mail scanners
// fetch these URLs before the user does, so the GET only renders a page and
// the token is spent by the page's POST to /auth/verify-magic-link.
func (h *Handler) OpenMagicLinkHandler(_ context.Context, _ *OpenMagicLinkRequest) (*OpenMagicLinkResponse, error) {
	return &OpenMagicLinkResponse{
		ContentType:    "text/html; charset=utf-8",
		CacheControl:   "no-store",
		ReferrerPolicy: "no-referrer",
		Body:           magicLinkPage,
	}, nil
}

// LogoutHandler always succeeds, with or without a valid session.
func (h *Handler) LogoutHandler(ctx context.Context, _ *struct{}) (*LogoutResponse, error) {
	var resp LogoutResponse
	resp.SetCookie = clearedCookie(h.secureCookie)
	resp.Body.Success = true
	resp.Body.Message = "Logged out successfully"
	return &resp, nil
}
