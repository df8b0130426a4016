// Package metrics exposes the gateway's Prometheus instrumentation,
// trimmed from the teacher's internal/monitoring/prometheus.go down to
// the three families this gateway actually emits: HTTP request metrics,
// cache operation outcomes, and backend engine call outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "search_gateway_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "search_gateway_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "status"})

	cacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "search_gateway_cache_operations_total",
		Help: "Cache operations by kind and outcome.",
	}, []string{"operation", "outcome"})

	engineCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "search_gateway_engine_calls_total",
		Help: "Backend engine calls by handle, kind and outcome.",
	}, []string{"handle", "kind", "outcome"})
)

// RecordRequest records one completed HTTP request.
func RecordRequest(route, status string, d time.Duration) {
	requestDuration.WithLabelValues(route, status).Observe(d.Seconds())
	requestsTotal.WithLabelValues(route, status).Inc()
}

// RecordCacheOperation mirrors the teacher's monitoring.RecordCacheOperation
// call sites, now consumed from internal/cache.
func RecordCacheOperation(operation, outcome string) {
	cacheOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordEngineCall records one backend engine invocation.
func RecordEngineCall(handle, kind, outcome string) {
	engineCalls.WithLabelValues(handle, kind, outcome).Inc()
}
