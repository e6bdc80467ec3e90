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

	// LLMCallDuration tracks the duration of individual model calls.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"model", "status"},
	)

	// LLMCallsTotal tracks individual model calls, including retries.
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total LLM calls",
		},
		[]string{"model", "status"},
	)

	// LLMRetriesTotal tracks calls that failed and were retried.
	LLMRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_retries_total",
			Help: "Total LLM calls retried after a transport error",
		},
		[]string{"model"},
	)

	// SummaryTierTotal tracks which tier served the primary call.
	SummaryTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_tier_total",
			Help: "Primary model selections by tier",
		},
		[]string{"tier"},
	)

	// SummaryFallbacksTotal tracks fallbacks after an empty primary result.
	SummaryFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_fallbacks_total",
			Help: "Fallback sequences run after an empty primary result",
		},
		[]string{"primary_model"},
	)

	// SummariesTotal tracks summary requests by transport and outcome.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summaries_total",
			Help: "Total summary requests",
		},
		[]string{"source", "outcome"},
	)

	// SummaryDuration tracks end-to-end summary latency.
	SummaryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_duration_seconds",
			Help:    "End-to-end summary duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"source"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMCall records metrics for a single model call.
func RecordLLMCall(model, status string, duration float64) {
	LLMCallDuration.WithLabelValues(model, status).Observe(duration)
	LLMCallsTotal.WithLabelValues(model, status).Inc()
}

// RecordSummary records the outcome of a summary request.
func RecordSummary(source, outcome string, duration float64) {
	SummariesTotal.WithLabelValues(source, outcome).Inc()
	SummaryDuration.WithLabelValues(source).Observe(duration)
}
