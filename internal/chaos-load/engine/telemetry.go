package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

// Prometheus metrics for the load-test engine, registered in the default
// registry that pkg/metrics.Server exposes alongside the CLI-wide command
// metrics. The chaos-load command does not start a metrics server itself.
var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaos_load_requests_total",
			Help: "Total HTTP requests issued by chaos-load, by outcome.",
		},
		[]string{"outcome"},
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chaos_load_request_duration_seconds",
			Help:    "Duration of individual HTTP requests issued by chaos-load.",
			Buckets: prometheus.DefBuckets,
		},
	)

	connectionErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaos_load_connection_errors_total",
			Help: "Total connection-class errors observed by chaos-load.",
		},
	)
)

func observeOutcome(result model.RequestResult, connectionError bool) {
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	requestsTotal.WithLabelValues(outcome).Inc()
	requestDuration.Observe(result.DurationMs / 1000.0)
	if connectionError {
		connectionErrorsTotal.Inc()
	}
}
