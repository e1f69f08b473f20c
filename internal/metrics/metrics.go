package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all Prometheus metrics for the dealer directory
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Import Metrics
	ImportRunsTotal     *prometheus.CounterVec
	ImportRowsProcessed prometheus.Counter
	ImportRowsSkipped   prometheus.Counter
	ImportDuration      *prometheus.HistogramVec

	// Dealer Metrics
	DealerUpdatesTotal *prometheus.CounterVec
}

// NewRegistry registers every metric with reg. Tests pass a fresh
// prometheus.NewRegistry(); the server passes prometheus.DefaultRegisterer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealerdir_http_requests_total",
				Help: "Total HTTP requests processed by route, method, and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dealerdir_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dealerdir_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		// Import Metrics
		ImportRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealerdir_import_runs_total",
				Help: "Import runs by source kind and outcome",
			},
			[]string{"source", "outcome"},
		),
		ImportRowsProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dealerdir_import_rows_processed_total",
				Help: "Total dealer rows written by imports",
			},
		),
		ImportRowsSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dealerdir_import_rows_skipped_total",
				Help: "Total import rows skipped for a missing dealer number",
			},
		),
		ImportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dealerdir_import_duration_seconds",
				Help:    "Import run duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"source"},
		),

		// Dealer Metrics
		DealerUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealerdir_dealer_updates_total",
				Help: "Dealer edit requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Nop returns a registry bound to a throwaway prometheus registry
func Nop() *Registry {
	return NewRegistry(prometheus.NewRegistry())
}
