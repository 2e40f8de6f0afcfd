// Package metrics provides Prometheus metrics for the leaderboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Leaderboard reads
	queries       *prometheus.CounterVec
	queryLatency  prometheus.Histogram
	queryEntries  prometheus.Histogram
	searchMatches prometheus.Histogram

	// Writes
	activitiesRecorded *prometheus.CounterVec
	eventsAppended     prometheus.Counter

	// Recalculation
	recalculations        *prometheus.CounterVec
	recalculationDuration prometheus.Histogram
	actorsUpdated         prometheus.Counter
	lastRecalculationUnix prometheus.Gauge
	recalculationRunning  prometheus.Gauge
	totalActors           prometheus.Gauge

	// Storage and mirrors
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
	mirrorErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByKind        *prometheus.CounterVec

	// Process
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "leaderboard",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets}
}

// initializeMetrics creates all the Prometheus collectors.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	sizeBuckets := prometheus.ExponentialBuckets(1, 4, 8)

	m.queries = auto.NewCounterVec(m.counterOpts("queries_total",
		"Leaderboard queries by window filter and whether a search term was given"),
		[]string{"filter", "search"})
	m.queryLatency = auto.NewHistogram(m.histogramOpts("query_latency_milliseconds",
		"Time to aggregate, merge and rank one leaderboard query", m.histogramBuckets))
	m.queryEntries = auto.NewHistogram(m.histogramOpts("query_entries",
		"Number of entries returned per query", sizeBuckets))
	m.searchMatches = auto.NewHistogram(m.histogramOpts("search_matches",
		"Number of actors matched by a search term", sizeBuckets))

	m.activitiesRecorded = auto.NewCounterVec(m.counterOpts("activities_recorded_total",
		"Activities recorded through the API by category"), []string{"category"})
	m.eventsAppended = auto.NewCounter(m.counterOpts("events_appended_total",
		"Events appended to the event store"))

	m.recalculations = auto.NewCounterVec(m.counterOpts("recalculations_total",
		"Recalculation cycles by outcome"), []string{"outcome"})
	m.recalculationDuration = auto.NewHistogram(m.histogramOpts("recalculation_duration_milliseconds",
		"Wall time of a full recalculation", prometheus.ExponentialBuckets(1, 2, 16)))
	m.actorsUpdated = auto.NewCounter(m.counterOpts("actors_updated_total",
		"Actors whose total and rank were rewritten by a recalculation"))
	m.lastRecalculationUnix = auto.NewGauge(m.gaugeOpts("last_recalculation_unix",
		"Completion time of the last successful recalculation"))
	m.recalculationRunning = auto.NewGauge(m.gaugeOpts("recalculation_running",
		"1 while a recalculation is rewriting totals and ranks"))
	m.totalActors = auto.NewGauge(m.gaugeOpts("total_actors",
		"Number of actors known to the store"))

	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Latency of event and actor store calls", m.histogramBuckets), []string{"op"})
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total",
		"Failed event and actor store calls"), []string{"op"})
	m.mirrorErrors = auto.NewCounter(m.counterOpts("rank_mirror_errors_total",
		"Failures publishing ranks to the mirror"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.errorsByKind = auto.NewCounterVec(m.counterOpts("errors_total",
		"Errors surfaced to callers by kind"), []string{"kind"})

	m.systemMemory = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated by the process"))
	m.systemGoroutines = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of live goroutines"))
	m.systemGCPause = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause time", m.histogramBuckets))
}

// RecordQuery counts a leaderboard query and its latency.
func RecordQuery(filter string, search bool, latency time.Duration, entries int) {
	if filter == "" {
		filter = "all"
	}
	s := "false"
	if search {
		s = "true"
	}
	globalManager.queries.WithLabelValues(filter, s).Inc()
	globalManager.queryLatency.Observe(millis(latency))
	globalManager.queryEntries.Observe(float64(entries))
}

// RecordSearchMatches observes how many actors a search term matched.
func RecordSearchMatches(n int) {
	globalManager.searchMatches.Observe(float64(n))
}

// RecordActivity counts an activity recorded through the API.
func RecordActivity(category string) {
	globalManager.activitiesRecorded.WithLabelValues(category).Inc()
}

// AddEventsAppended adds n appended events.
func AddEventsAppended(n int) {
	globalManager.eventsAppended.Add(float64(n))
}

// RecordRecalculationStart flags a recalculation as running.
func RecordRecalculationStart() {
	globalManager.recalculationRunning.Set(1)
}

// RecordRecalculation records the outcome of a recalculation cycle.
func RecordRecalculation(success bool, duration time.Duration, actorsUpdated int) {
	globalManager.recalculationRunning.Set(0)
	outcome := "failure"
	if success {
		outcome = "success"
		globalManager.lastRecalculationUnix.Set(float64(time.Now().Unix()))
	}
	globalManager.recalculations.WithLabelValues(outcome).Inc()
	globalManager.recalculationDuration.Observe(millis(duration))
	globalManager.actorsUpdated.Add(float64(actorsUpdated))
}

// UpdateTotalActors sets the number of known actors.
func UpdateTotalActors(n int) {
	globalManager.totalActors.Set(float64(n))
}

// ObserveStore records the latency and outcome of a store call.
func ObserveStore(op string, started time.Time, err error) {
	globalManager.storeLatency.WithLabelValues(op).Observe(millis(time.Since(started)))
	if err != nil {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// RecordMirrorError counts a failed rank mirror publication.
func RecordMirrorError() {
	globalManager.mirrorErrors.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByKind counts an error surfaced to a caller.
func RecordErrorByKind(kind string) {
	globalManager.errorsByKind.WithLabelValues(kind).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime observes an average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Observe(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
