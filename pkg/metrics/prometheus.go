// Package metrics provides Prometheus metrics for the rating engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Submission metrics - the write path.
	ratingsAccepted prometheus.Counter
	ratingsUpdated  prometheus.Counter
	ratingsRejected *prometheus.CounterVec

	// Ledger state gauges.
	ledgerWeeklyRecords prometheus.Gauge
	ledgerEventsTotal   prometheus.Gauge
	ledgerShardCount    prometheus.Gauge
	teachersTracked     prometheus.Gauge

	// Ledger operation latency.
	ledgerUpdateLatency prometheus.Histogram
	ledgerQueryLatency  prometheus.Histogram

	// Snapshot metrics - the rollover path.
	snapshotWrites        prometheus.Counter
	snapshotConflicts     prometheus.Counter
	snapshotRowsWritten   prometheus.Counter
	snapshotWriteDuration prometheus.Histogram
	snapshotLastUnix      prometheus.Gauge
	snapshotWeeksStored   prometheus.Gauge

	// Leaderboard read metrics.
	leaderboardQueries *prometheus.CounterVec

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "classrank",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ratingsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ratings_accepted_total",
		Help:      "Total number of first-of-week rating submissions accepted",
	})

	m.ratingsUpdated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ratings_updated_total",
		Help:      "Total number of within-week rating resubmissions (weekly record overwritten)",
	})

	m.ratingsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ratings_rejected_total",
			Help:      "Total number of rejected rating submissions by reason",
		},
		[]string{"reason"},
	)

	m.ledgerWeeklyRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_weekly_records",
		Help:      "Number of deduplicated weekly rating records currently held",
	})

	m.ledgerEventsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_events_total",
		Help:      "Number of rows in the append-only all-time rating ledger",
	})

	m.ledgerShardCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_shard_count",
		Help:      "Number of shards in the submission ledger store",
	})

	m.teachersTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teachers_tracked",
		Help:      "Number of teachers with at least one all-time rating",
	})

	m.ledgerUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_update_latency_milliseconds",
		Help:      "Submission ledger write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.ledgerQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_query_latency_milliseconds",
		Help:      "Submission ledger read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_writes_total",
		Help:      "Total number of week snapshots written",
	})

	m.snapshotConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_conflicts_total",
		Help:      "Total number of snapshot writes refused because the week was already snapshotted",
	})

	m.snapshotRowsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rows_written_total",
		Help:      "Total number of per-teacher snapshot rows written",
	})

	m.snapshotWriteDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_write_duration_milliseconds",
		Help:      "Week snapshot write duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_unix",
		Help:      "Unix timestamp of the last successful week snapshot write",
	})

	m.snapshotWeeksStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_weeks_stored",
		Help:      "Number of snapshotted weeks held by the snapshot store",
	})

	m.leaderboardQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "leaderboard_queries_total",
			Help:      "Total number of leaderboard queries by mode and source",
		},
		[]string{"mode", "source"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Submission helpers.

// RecordRatingAccepted increments the accepted (first-of-week) counter.
func RecordRatingAccepted() {
	globalManager.ratingsAccepted.Inc()
}

// RecordRatingUpdated increments the within-week edit counter.
func RecordRatingUpdated() {
	globalManager.ratingsUpdated.Inc()
}

// RecordRatingRejected increments the rejection counter for a reason
// label such as "validation", "not_found" or "inactive".
func RecordRatingRejected(reason string) {
	globalManager.ratingsRejected.WithLabelValues(reason).Inc()
}

// Ledger helpers.

// UpdateLedgerWeeklyRecords sets the weekly record gauge.
func UpdateLedgerWeeklyRecords(count int) {
	globalManager.ledgerWeeklyRecords.Set(float64(count))
}

// UpdateLedgerEventsTotal sets the all-time event gauge.
func UpdateLedgerEventsTotal(count int) {
	globalManager.ledgerEventsTotal.Set(float64(count))
}

// UpdateLedgerShardCount sets the ledger shard gauge.
func UpdateLedgerShardCount(count int) {
	globalManager.ledgerShardCount.Set(float64(count))
}

// UpdateTeachersTracked sets the tracked-teacher gauge.
func UpdateTeachersTracked(count int) {
	globalManager.teachersTracked.Set(float64(count))
}

// RecordLedgerUpdateLatency records a ledger write latency sample.
func RecordLedgerUpdateLatency(latencyMs float64) {
	globalManager.ledgerUpdateLatency.Observe(latencyMs)
}

// RecordLedgerQueryLatency records a ledger read latency sample.
func RecordLedgerQueryLatency(latencyMs float64) {
	globalManager.ledgerQueryLatency.Observe(latencyMs)
}

// Snapshot helpers.

// RecordSnapshotWrite records one successful snapshot write.
func RecordSnapshotWrite(rows int, durationMs float64, completedUnix int64) {
	globalManager.snapshotWrites.Inc()
	globalManager.snapshotRowsWritten.Add(float64(rows))
	globalManager.snapshotWriteDuration.Observe(durationMs)
	globalManager.snapshotLastUnix.Set(float64(completedUnix))
}

// RecordSnapshotConflict records a refused duplicate snapshot write.
func RecordSnapshotConflict() {
	globalManager.snapshotConflicts.Inc()
}

// UpdateSnapshotWeeksStored sets the stored-week gauge.
func UpdateSnapshotWeeksStored(count int) {
	globalManager.snapshotWeeksStored.Set(float64(count))
}

// Leaderboard helpers.

// RecordLeaderboardQuery counts one leaderboard read. Source is "live"
// or "snapshot".
func RecordLeaderboardQuery(mode, source string) {
	globalManager.leaderboardQueries.WithLabelValues(mode, source).Inc()
}

// HTTP helpers.

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration sample.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// System helpers.

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause sample.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served at /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
