// Package metrics provides Prometheus metrics for imgd.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts resize requests by response status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imgd",
			Name:      "requests_total",
			Help:      "Total number of image resize requests",
		},
		[]string{"status"},
	)

	// CacheLookupsTotal counts cache lookups by result.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imgd",
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups",
		},
		[]string{"result"},
	)

	// UpstreamFetchesTotal counts upstream fetch attempts by outcome.
	UpstreamFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imgd",
			Name:      "upstream_fetches_total",
			Help:      "Total number of upstream image fetches",
		},
		[]string{"status"},
	)

	// TransformDuration measures decode-resize-encode duration.
	TransformDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "imgd",
			Name:      "transform_duration_seconds",
			Help:      "Duration of image transform operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// RecordRequest records a completed resize request.
func RecordRequest(statusCode int) {
	RequestsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordCacheHit records a cache lookup that found an entry.
func RecordCacheHit() {
	CacheLookupsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a cache lookup that found nothing.
func RecordCacheMiss() {
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordUpstreamFetch records an upstream fetch outcome.
func RecordUpstreamFetch(status string) {
	UpstreamFetchesTotal.WithLabelValues(status).Inc()
}

// RecordTransform records the duration of one transform.
func RecordTransform(seconds float64) {
	TransformDuration.Observe(seconds)
}
