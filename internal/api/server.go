// Package api exposes the calculation engine, record store, and forecaster
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/forecast"
	"github.com/moneysplit/moneysplit/internal/jurisdiction"
	"github.com/moneysplit/moneysplit/internal/store"
)

// Server wires handlers to the engine and repositories. The record and
// bracket repositories are optional: without them the calculation
// endpoints still work and the persistence endpoints report 503.
type Server struct {
	logger   *slog.Logger
	metrics  *Metrics
	records  *store.RecordsRepo
	brackets *store.BracketsRepo
	base     func() *jurisdiction.Registry
	ping     func(ctx context.Context) error
}

// NewServer builds a server. base supplies the built-in registry (usually
// jurisdiction.DefaultRegistry); stored bracket schedules overlay it per
// request when a brackets repository is present.
func NewServer(logger *slog.Logger, metrics *Metrics, records *store.RecordsRepo, brackets *store.BracketsRepo, base func() *jurisdiction.Registry) *Server {
	if base == nil {
		base = jurisdiction.DefaultRegistry
	}
	return &Server{
		logger:   logger,
		metrics:  metrics,
		records:  records,
		brackets: brackets,
		base:     base,
	}
}

// SetReadinessCheck installs the dependency probe used by /readyz.
func (s *Server) SetReadinessCheck(ping func(ctx context.Context) error) {
	s.ping = ping
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Instrument(s.logger, s.metrics))

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)
		r.Post("/optimal", s.handleOptimal)
		r.Get("/jurisdictions", s.handleJurisdictions)

		r.Post("/projects", s.handleCreateProject)
		r.Get("/records", s.handleListRecords)
		r.Get("/records/{id}", s.handleGetRecord)
		r.Delete("/records/{id}", s.handleDeleteRecord)
		r.Get("/people/history/{name}", s.handlePersonHistory)

		r.Get("/tax-brackets", s.handleListBrackets)
		r.Post("/tax-brackets", s.handleCreateBracket)
		r.Delete("/tax-brackets/{id}", s.handleDeleteBracket)

		r.Get("/forecast/revenue", s.handleForecastRevenue)
		r.Get("/forecast/trends", s.handleForecastTrends)
		r.Get("/forecast/break-even", s.handleBreakEven)
	})

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// registry resolves the effective registry for one request: built-in
// defaults overlaid with stored bracket schedules when a database is
// configured.
func (s *Server) registry(ctx context.Context) (*jurisdiction.Registry, error) {
	if s.brackets == nil {
		return s.base(), nil
	}
	return s.brackets.SnapshotRegistry(ctx, s.base)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors to statuses: invalid input and calculation
// constraint violations are 422, missing records 404, everything else 500.
// Malformed request bodies are handled at the decode site with 400.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	errType := "internal"
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrSalaryExceedsProfit),
		errors.Is(err, domain.ErrMissingBrackets),
		errors.Is(err, domain.ErrNoViableStrategy),
		errors.Is(err, forecast.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
		errType = "validation"
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		errType = "not_found"
	}

	requestID := RequestIDFromContext(r.Context())
	if s.metrics != nil {
		s.metrics.TrackError(errType, r.URL.Path)
	}
	if s.logger != nil && status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"request_id", requestID, "endpoint", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), RequestID: requestID})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:     "invalid request body: " + err.Error(),
			RequestID: RequestIDFromContext(r.Context()),
		})
		if s.metrics != nil {
			s.metrics.TrackError("decode", r.URL.Path)
		}
		return false
	}
	return true
}

// requireStore guards the persistence endpoints.
func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.records == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:     "database not configured",
			RequestID: RequestIDFromContext(r.Context()),
		})
		return false
	}
	return true
}
