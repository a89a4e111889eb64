package account

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/delordemm1/dealer-dashboard/internal/apperr"
	"github.com/delordemm1/dealer-dashboard/internal/contextx"
	"github.com/delordemm1/dealer-dashboard/internal/httpx"
)

// Handler holds the dependencies for the account module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the account module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the profile endpoints. Both require a session identity;
// mw is applied to each operation.
func (h *Handler) RegisterRoutes(api huma.API, mw ...func(huma.Context, func(huma.Context))) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/account",
		Summary:     "Get the current account",
		Tags:        []string{"Account"},
		Middlewares: mw,
	}, h.GetAccountHandler)

	huma.Register(api, huma.Operation{
		OperationID: "update-account",
		Method:      http.MethodPut,
		Path:        "/account",
		Summary:     "Update the current account's profile",
		Tags:        []string{"Account"},
		Middlewares: mw,
	}, h.UpdateAccountHandler)
}

// --- DTOs & Mappers ---

// View is the public representation of an account.
type View struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Roles     []string   `json:"roles"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ToView maps a domain Account to its public representation.
func ToView(a *Account) View {
	return View{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Roles:     a.Roles,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type AccountResponse struct {
	Body struct {
		Success bool `json:"success"`
		User    View `json:"user"`
	}
}

func toAccountResponse(a *Account) *AccountResponse {
	var resp AccountResponse
	resp.Body.Success = true
	resp.Body.User = ToView(a)
	return &resp
}

type UpdateAccountRequest struct {
	Body struct {
		FullName string `json:"fullName" minLength:"1" maxLength:"100" doc:"Display name, 1 to 100 characters after trimming"`
	}
}

// --- Handlers ---

func (h *Handler) GetAccountHandler(ctx context.Context, _ *struct{}) (*AccountResponse, error) {
	id, ok := contextx.IdentityFrom(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, apperr.ErrUnauthorized)
	}

	a, err := h.service.Get(ctx, id.AccountID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return toAccountResponse(a), nil
}

func (h *Handler) UpdateAccountHandler(ctx context.Context, input *UpdateAccountRequest) (*AccountResponse, error) {
	id, ok := contextx.IdentityFrom(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, apperr.ErrUnauthorized)
	}

	a, err := h.service.UpdateProfile(ctx, id.AccountID, input.Body.FullName)
	if err != nil {
		h.logger.Warn("update account failed", "account_id", id.AccountID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return toAccountResponse(a), nil
}
