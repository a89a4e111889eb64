package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/delordemm1/dealer-dashboard/internal/httpx"
	"github.com/delordemm1/dealer-dashboard/internal/metrics"
	appmw "github.com/delordemm1/dealer-dashboard/internal/middleware"
	"github.com/delordemm1/dealer-dashboard/internal/modules/account"
	"github.com/delordemm1/dealer-dashboard/internal/modules/auth"
	"github.com/delordemm1/dealer-dashboard/internal/modules/dealer"
	"github.com/delordemm1/dealer-dashboard/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the wired modules served by the router. Dealer may be nil when no
// document store is configured.
type Deps struct {
	Logger  *slog.Logger
	Codec   *session.Codec
	Gate    appmw.GateConfig
	Metrics *metrics.Auth

	Auth    *auth.Handler
	Account *account.Handler
	Dealer  *dealer.Handler
}

// New creates the chi router with the gate in front of the Huma API.
func New(deps Deps) chi.Router {
	httpx.UseProblemErrors()

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(appmw.Gate(deps.Gate, deps.Codec, deps.Logger))

	apiConfig := huma.DefaultConfig("Dealer Dashboard API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookie": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	api := humachi.New(router, apiConfig)

	deps.Auth.RegisterRoutes(api)
	deps.Account.RegisterRoutes(api, appmw.RequireIdentity)
	if deps.Dealer != nil {
		deps.Dealer.RegisterRoutes(api, appmw.RequireIdentity)
	}

	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler())
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		resp := &HealthResponse{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	return router
}

type HealthResponse struct {
	Body struct {
		Status string `json:"status"`
	}
}
