package dealer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/delordemm1/dealer-dashboard/internal/httpx"
)

// Handler holds the dependencies for the dealer module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the dealer module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routing for the dealer module. mw is applied to every operation.
func (h *Handler) RegisterRoutes(api huma.API, mw ...func(huma.Context, func(huma.Context))) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-dealer",
		Method:        http.MethodPost,
		Path:          "/dealers",
		Summary:       "Track a dealer looked up from MarketCheck",
		Tags:          []string{"Dealers"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   mw,
	}, h.CreateDealerHandler)

	huma.Register(api, huma.Operation{
		OperationID: "list-dealers",
		Method:      http.MethodGet,
		Path:        "/dealers",
		Summary:     "List tracked dealers, newest first",
		Tags:        []string{"Dealers"},
		Middlewares: mw,
	}, h.ListDealersHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-dealer",
		Method:      http.MethodGet,
		Path:        "/dealers/{dealerId}",
		Summary:     "Get a tracked dealer",
		Tags:        []string{"Dealers"},
		Middlewares: mw,
	}, h.GetDealerHandler)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-dealer",
		Method:      http.MethodPost,
		Path:        "/dealers/{dealerId}/refresh",
		Summary:     "Re-fetch a tracked dealer from MarketCheck",
		Tags:        []string{"Dealers"},
		Middlewares: mw,
	}, h.RefreshDealerHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-dealer",
		Method:        http.MethodDelete,
		Path:          "/dealers/{dealerId}",
		Summary:       "Stop tracking a dealer",
		Tags:          []string{"Dealers"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   mw,
	}, h.DeleteDealerHandler)
}

// --- DTOs ---

type CreateDealerRequest struct {
	Body struct {
		DealerID string `json:"dealerId" minLength:"1" maxLength:"64"`
		Region   string `json:"region" enum:"usa,uk"`
	}
}

type DealerPathRequest struct {
	DealerID string `path:"dealerId" maxLength:"64"`
}

type RefreshDealerRequest struct {
	DealerID string `path:"dealerId" maxLength:"64"`
	Body     struct {
		Region string `json:"region,omitempty" enum:"usa,uk" doc:"Defaults to the region the dealer was added with"`
	} `required:"false"`
}

type DealerResponse struct {
	Body struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		Data    *Dealer `json:"data"`
	}
}

type DealerListResponse struct {
	Body struct {
		Success bool      `json:"success"`
		Message string    `json:"message"`
		Data    []*Dealer `json:"data"`
	}
}

func dealerResponse(d *Dealer, message string) *DealerResponse {
	var resp DealerResponse
	resp.Body.Success = true
	resp.Body.Message = message
	resp.Body.Data = d
	return &resp
}

// --- Handlers ---

func (h *Handler) CreateDealerHandler(ctx context.Context, input *CreateDealerRequest) (*DealerResponse, error) {
	d, err := h.service.Create(ctx, CreateInput{DealerID: input.Body.DealerID, Region: input.Body.Region})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return dealerResponse(d, "Dealer created and stored successfully"), nil
}

func (h *Handler) ListDealersHandler(ctx context.Context, _ *struct{}) (*DealerListResponse, error) {
	dealers, err := h.service.List(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	var resp DealerListResponse
	resp.Body.Success = true
	resp.Body.Message = "Dealers fetched successfully"
	resp.Body.Data = dealers
	return &resp, nil
}

func (h *Handler) GetDealerHandler(ctx context.Context, input *DealerPathRequest) (*DealerResponse, error) {
	d, err := h.service.Get(ctx, input.DealerID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return dealerResponse(d, "Dealer fetched successfully"), nil
}

func (h *Handler) RefreshDealerHandler(ctx context.Context, input *RefreshDealerRequest) (*DealerResponse, error) {
	d, err := h.service.Refresh(ctx, input.DealerID, input.Body.Region)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return dealerResponse(d, "Dealer refreshed successfully"), nil
}

func (h *Handler) DeleteDealerHandler(ctx context.Context, input *DealerPathRequest) (*struct{}, error) {
	if err := h.service.Delete(ctx, input.DealerID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return nil, nil
}
