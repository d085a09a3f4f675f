package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the HTTP API: request counts and
// latencies plus the business-level calculation counters.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
	ProjectsCreated prometheus.Counter
	TaxCalculations *prometheus.CounterVec
}

// NewMetrics creates and registers all API metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moneysplit_requests_total",
			Help: "Total number of requests",
		}, []string{"method", "endpoint", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "moneysplit_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "endpoint"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moneysplit_errors_total",
			Help: "Total number of errors",
		}, []string{"type", "endpoint"}),
		ProjectsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneysplit_projects_created_total",
			Help: "Total number of projects created",
		}),
		TaxCalculations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moneysplit_tax_calculations_total",
			Help: "Total number of tax calculations performed",
		}, []string{"country", "tax_type"}),
	}
}

// TrackRequest records a completed request.
func (m *Metrics) TrackRequest(method, endpoint string, status string, start time.Time) {
	m.RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

// TrackError records an error occurrence by type.
func (m *Metrics) TrackError(errType, endpoint string) {
	m.ErrorsTotal.WithLabelValues(errType, endpoint).Inc()
}

// TrackCalculation records one tax calculation.
func (m *Metrics) TrackCalculation(country, taxType string) {
	m.TaxCalculations.WithLabelValues(country, taxType).Inc()
}
