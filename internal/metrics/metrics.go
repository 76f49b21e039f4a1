package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered with the default registry through promauto and
// exposed on /metrics by promhttp.

var (
	// ==================== HTTP METRICS ====================

	// HTTPRequestDuration tracks the duration of HTTP requests
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsTotal counts total HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsInFlight tracks currently processing requests
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== CACHE METRICS ====================

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheOperationDuration tracks cache operation latency
	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"operation"}, // get, set
	)

	// ==================== BUSINESS METRICS ====================

	// URLsCreatedTotal counts newly stored mappings
	URLsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "urls_created_total",
			Help: "Total number of URL mappings created",
		},
	)

	// DedupHitsTotal counts submissions answered with an existing mapping
	DedupHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "url_dedup_hits_total",
			Help: "Total number of submissions that returned an existing mapping",
		},
	)

	// InsertRacesTotal counts Insert calls rejected by a uniqueness constraint,
	// labelled by how the single re-read resolved them
	InsertRacesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_insert_races_total",
			Help: "Total number of duplicate-key inserts by outcome",
		},
		[]string{"outcome"}, // recovered, conflict
	)

	// ValidationFailuresTotal counts rejected submissions by reason
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_validation_failures_total",
			Help: "Total number of rejected URL submissions",
		},
		[]string{"reason"}, // malformed, unresolvable
	)

	// RedirectsTotal counts successful resolutions
	RedirectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redirects_total",
			Help: "Total number of successful redirects",
		},
	)

	// ==================== DATABASE METRICS ====================

	// DatabaseQueryDuration tracks database query latency
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"}, // find_by_url, find_by_code, count, insert
	)

	// DatabaseErrorsTotal counts unexpected database errors
	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation"},
	)
)

// RecordCacheHit increments cache hit counter
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss increments cache miss counter
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordURLCreated increments URL creation counter
func RecordURLCreated() {
	URLsCreatedTotal.Inc()
}

// RecordDedupHit increments the dedup counter
func RecordDedupHit() {
	DedupHitsTotal.Inc()
}

// RecordInsertRace increments the race counter for the given outcome
func RecordInsertRace(outcome string) {
	InsertRacesTotal.WithLabelValues(outcome).Inc()
}

// RecordValidationFailure increments the validation failure counter
func RecordValidationFailure(reason string) {
	ValidationFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordRedirect increments redirect counter
func RecordRedirect() {
	RedirectsTotal.Inc()
}

// RecordDatabaseError increments the error counter for an operation
func RecordDatabaseError(operation string) {
	DatabaseErrorsTotal.WithLabelValues(operation).Inc()
}
