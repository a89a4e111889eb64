package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/delordemm1/dealer-dashboard/internal/apperr"
	"github.com/stretchr/testify/require"
)

func TestToKebab(t *testing.T) {
	cases := map[string]string{
		"ErrInvalidCode":   "err-invalid-code",
		"USER_NOT_FOUND":   "user-not-found",
		"ErrResendTooSoon": "err-resend-too-soon",
		"":                 "",
	}
	for in, want := range cases {
		require.Equal(t, want, toKebab(in), "input %q", in)
	}
}

func TestToProblem_DomainError(t *testing.T) {
	err := apperr.ErrConflict.WithCause(errors.New("duplicate key"))

	got := ToProblem(context.Background(), err)

	var p *Problem
	require.ErrorAs(t, got, &p)
	require.Equal(t, http.StatusConflict, p.GetStatus())
	require.Equal(t, "ErrConflict", p.Code)
	require.Equal(t, "resource already exists", p.Detail)
	require.NotContains(t, p.Detail, "duplicate key")
}

func TestToProblem_UnknownErrorIsInternal(t *testing.T) {
	got := ToProblem(context.Background(), errors.New("boom"))

	var p *Problem
	require.ErrorAs(t, got, &p)
	require.Equal(t, http.StatusInternalServerError, p.GetStatus())
	require.Equal(t, "ErrInternal", p.Code)
}

func TestUseProblemErrors_MapsUnprocessableToBadRequest(t *testing.T) {
	UseProblemErrors()

	se := huma.NewError(http.StatusUnprocessableEntity, "validation failed", &huma.ErrorDetail{Message: "expected required property email to be present", Location: "body.email"})

	require.Equal(t, http.StatusBadRequest, se.GetStatus())
	p, ok := se.(*Problem)
	require.True(t, ok)
	require.Equal(t, "ErrValidation", p.Code)
	require.Len(t, p.Errors, 1)
	require.Equal(t, "body.email", p.Errors[0].Location)
}

func TestUseProblemErrors_ConcurrentCalls(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UseProblemErrors()
			_ = huma.NewError(http.StatusNotFound, "missing")
		}()
	}
	wg.Wait()

	p, ok := huma.NewError(http.StatusNotFound, "missing").(*Problem)
	require.True(t, ok)
	require.Equal(t, "ErrNotFound", p.Code)
	require.Equal(t, "urn:problem:err-not-found", p.Type)
}

func TestWriteProblem(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteProblem(rr, &Problem{Status: http.StatusUnauthorized, Code: "ErrUnauthorized", Detail: "authentication required"})

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), `"code":"ErrUnauthorized"`)
}
