// Package metrics holds the Prometheus collectors for the API and the
// scoring engines.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSize       *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Analysis metrics
	AnalysesTotal             *prometheus.CounterVec
	AnalysisDuration          *prometheus.HistogramVec
	AnalysisRiskScore         *prometheus.HistogramVec
	DegradedTotal             *prometheus.CounterVec
	JurisdictionFallbackTotal prometheus.Counter
	BatchSize                 prometheus.Histogram

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// History store
	HistoryOperationsTotal *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics with the default
// registry. It is idempotent.
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_size_bytes",
					Help:    "HTTP request body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 6),
				},
				[]string{"method", "path"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 6),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_requests",
					Help: "Number of in-flight HTTP requests",
				},
				[]string{"method", "path"},
			),

			AnalysesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "postcheck_analyses_total",
					Help: "Completed analyses by engine and verdict",
				},
				[]string{"engine", "verdict"},
			),
			AnalysisDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "postcheck_analysis_duration_seconds",
					Help:    "Time spent producing an analysis",
					Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"engine"},
			),
			AnalysisRiskScore: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "postcheck_risk_score",
					Help:    "Distribution of risk scores (100 = safe)",
					Buckets: []float64{0, 25, 50, 75, 90, 100},
				},
				[]string{"jurisdiction"},
			),
			DegradedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "postcheck_model_degraded_total",
					Help: "Model analyses that fell back to the heuristic, by reason",
				},
				[]string{"reason"},
			),
			JurisdictionFallbackTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "postcheck_jurisdiction_fallback_total",
					Help: "Requests whose jurisdiction code was unknown and replaced by the default",
				},
			),
			BatchSize: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "postcheck_batch_size",
					Help:    "Number of items per batch request",
					Buckets: []float64{1, 2, 5, 10, 20},
				},
			),

			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache"},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"backend"},
			),

			HistoryOperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "postcheck_history_operations_total",
					Help: "History store operations by kind and outcome",
				},
				[]string{"operation", "status"},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total errors by type and endpoint",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}
