package dealer

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T, lookup *fakeLookup) humatest.TestAPI {
	t.Helper()
	svc := newTestService(newMemoryRepo(), lookup, &fixedClock{now: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)})
	_, api := humatest.New(t)
	NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(api)
	return api
}

func TestDealerHandlers_Lifecycle(t *testing.T) {
	api := setupHandler(t, &fakeLookup{name: "Northside Motors"})

	resp := api.Post("/dealers", map[string]any{"dealerId": "1022343", "region": "uk"})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    Dealer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.True(t, created.Success)
	require.Equal(t, "Dealer created and stored successfully", created.Message)
	require.Equal(t, "Northside Motors", created.Data.Name)

	resp = api.Post("/dealers", map[string]any{"dealerId": "1022343", "region": "uk"})
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = api.Get("/dealers")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"dealerId":"1022343"`)

	resp = api.Get("/dealers/1022343")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Post("/dealers/1022343/refresh", map[string]any{"region": "uk"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"updatedAt"`)

	resp = api.Delete("/dealers/1022343")
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = api.Get("/dealers/1022343")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Contains(t, resp.Body.String(), "ErrDealerNotFound")

	resp = api.Delete("/dealers/1022343")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDealerHandlers_Upstream(t *testing.T) {
	api := setupHandler(t, &fakeLookup{err: ErrUpstream.WithDetail("dealer lookup failed with status 500")})

	resp := api.Post("/dealers", map[string]any{"dealerId": "1", "region": "usa"})
	require.Equal(t, http.StatusBadGateway, resp.Code)
	require.Contains(t, resp.Body.String(), "ErrUpstream")
}

func TestDealerHandlers_EmptyList(t *testing.T) {
	api := setupHandler(t, &fakeLookup{err: errors.New("unused")})

	resp := api.Get("/dealers")
	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Success bool      `json:"success"`
		Data    []*Dealer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotNil(t, body.Data)
	require.Empty(t, body.Data)
}
