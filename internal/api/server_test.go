package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(logger, nil, nil, nil, nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandleCalculate(t *testing.T) {
	router := testServer().Router()

	t.Run("individual", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/calculate", map[string]any{
			"revenue":     100000,
			"total_costs": 20000,
			"num_people":  2,
			"country":     "US",
			"tax_type":    "Individual",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "US", res["jurisdiction"])
		assert.Equal(t, "17168.64", res["total_tax"])
		assert.Equal(t, "62831.36", res["net_income_group"])
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("business mixed with salary", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/calculate", map[string]any{
			"revenue":             100000,
			"total_costs":         20000,
			"num_people":          2,
			"country":             "US",
			"tax_type":            "Business",
			"distribution_method": "Mixed",
			"salary_amount":       30000,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "59343.5", res["net_income_group"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid people count", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/calculate", map[string]any{
			"revenue":    100000,
			"num_people": 0,
			"country":    "US",
			"tax_type":   "Individual",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown distribution method", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/calculate", map[string]any{
			"revenue":             100000,
			"num_people":          2,
			"country":             "US",
			"tax_type":            "Business",
			"distribution_method": "Bonus",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown jurisdiction", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/calculate", map[string]any{
			"revenue":    100000,
			"num_people": 2,
			"country":    "Mars",
			"tax_type":   "Individual",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandleOptimal(t *testing.T) {
	router := testServer().Router()

	w := doJSON(t, router, http.MethodPost, "/api/optimal", map[string]any{
		"revenue":     100000,
		"total_costs": 20000,
		"num_people":  2,
		"country":     "US",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec struct {
		Strategies []struct {
			StrategyName string `json:"strategy_name"`
		} `json:"all_strategies"`
		Optimal struct {
			StrategyName string `json:"strategy_name"`
		} `json:"optimal"`
		Savings string `json:"savings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Len(t, rec.Strategies, 5)
	assert.Equal(t, "Individual Tax", rec.Optimal.StrategyName)
	assert.Equal(t, "6255.36", rec.Savings)
}

func TestHandleOptimalNoViableStrategy(t *testing.T) {
	router := testServer().Router()
	w := doJSON(t, router, http.MethodPost, "/api/optimal", map[string]any{
		"revenue":     10000,
		"total_costs": 50000,
		"num_people":  2,
		"country":     "US",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleJurisdictions(t *testing.T) {
	router := testServer().Router()
	w := doJSON(t, router, http.MethodGet, "/api/jurisdictions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["jurisdictions"], "US")
	assert.Contains(t, body["jurisdictions"], "Spain")
	assert.Contains(t, body["states"], "CA")
}

func TestPersistenceEndpointsWithoutDatabase(t *testing.T) {
	router := testServer().Router()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/records"},
		{http.MethodGet, "/api/records/1"},
		{http.MethodDelete, "/api/records/1"},
		{http.MethodPost, "/api/projects"},
		{http.MethodGet, "/api/tax-brackets?country=US&tax_type=Individual"},
		{http.MethodGet, "/api/forecast/revenue"},
		{http.MethodGet, "/api/forecast/trends"},
	}
	for _, p := range paths {
		w := doJSON(t, router, p.method, p.path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", p.method, p.path)
	}
}

func TestHandleBreakEven(t *testing.T) {
	router := testServer().Router()

	w := doJSON(t, router, http.MethodGet, "/api/forecast/break-even?revenue=100000&costs=20000", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "80000", report["profit"])
	assert.Equal(t, "20000", report["break_even_revenue"])

	w = doJSON(t, router, http.MethodGet, "/api/forecast/break-even?revenue=abc&costs=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer()
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	srv.SetReadinessCheck(func(ctx context.Context) error { return errors.New("db down") })
	w = doJSON(t, srv.Router(), http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	router := testServer().Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "test-id-123", w.Header().Get("X-Request-ID"))
}
