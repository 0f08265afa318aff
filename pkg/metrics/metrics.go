// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UpstreamAttemptsTotal tracks individual upstream completion attempts.
	UpstreamAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_attempts_total",
			Help: "Upstream completion attempts by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	// UpstreamLatency tracks latency of successful upstream completions.
	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_completion_duration_seconds",
			Help:    "Upstream completion duration in seconds",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"model"},
	)

	// PoolRefreshesTotal tracks model pool rebuilds.
	PoolRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_pool_refreshes_total",
			Help: "Model pool cache rebuilds by discovery outcome",
		},
		[]string{"outcome"},
	)

	// PoolSize reports the size of the current model pool.
	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_pool_size",
			Help: "Number of models in the active pool",
		},
	)

	// ToolRoutesTotal tracks tool routing decisions.
	ToolRoutesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_routes_total",
			Help: "Tool routing decisions by tool and origin (classified|default)",
		},
		[]string{"tool", "origin"},
	)

	// EmailDraftsTotal tracks synthesized email drafts by source.
	EmailDraftsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_drafts_total",
			Help: "Synthesized email drafts by source (upstream|local)",
		},
		[]string{"source"},
	)

	// ShortCircuitsTotal tracks requests answered from static facts.
	ShortCircuitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "short_circuits_total",
			Help: "Requests answered locally without any upstream call",
		},
	)

	// ExchangesRecorded tracks exchanges published to the stream.
	ExchangesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchanges_recorded_total",
			Help: "Assistant exchanges published to JetStream by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
