package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/delordemm1/dealer-dashboard/internal/contextx"
	apphttpx "github.com/delordemm1/dealer-dashboard/internal/httpx"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequireIdentity is an operation-level huma middleware that answers 401
// problem+json when the gate attached no identity to the request.
func RequireIdentity(ctx huma.Context, next func(huma.Context)) {
	if _, ok := contextx.IdentityFrom(ctx.Context()); ok {
		next(ctx)
		return
	}

	p := &apphttpx.Problem{
		Type:      "urn:problem:auth/err-unauthorized",
		Title:     http.StatusText(http.StatusUnauthorized),
		Status:    http.StatusUnauthorized,
		Detail:    "authentication required",
		Code:      "ErrUnauthorized",
		RequestID: chimw.GetReqID(ctx.Context()),
	}
	ctx.SetHeader("Content-Type", "application/problem+json")
	ctx.SetStatus(p.GetStatus())
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(p)
}
