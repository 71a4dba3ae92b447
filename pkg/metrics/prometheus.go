// Package metrics provides Prometheus metrics for the scorebook service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by scorebook.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	playsClassified *prometheus.CounterVec
	unknownPlays    prometheus.Counter
	keyPlays        prometheus.Counter
	gamesScored     prometheus.Counter
	gamesDuplicate  prometheus.Counter
	scoringLatency  prometheus.Histogram
	scoringErrors   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Remote sources
	fetches       *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	nameCacheHits *prometheus.CounterVec

	// Storage
	storeLatency *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	storedGames    prometheus.Gauge
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorebook",
		subsystem:        "scorecard",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.playsClassified = m.counterVec("plays_classified_total", "Plate appearances classified, by outcome kind", "kind")
	m.unknownPlays = m.counter("unknown_plays_total", "Plate appearances that fell through to Unknown")
	m.keyPlays = m.counter("key_plays_total", "Plays whose win expectancy swing reached the key-play threshold")
	m.gamesScored = m.counter("games_scored_total", "Games scored and stored")
	m.gamesDuplicate = m.counter("games_duplicate_total", "Game submissions rejected as duplicates")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Time to score one game in milliseconds")
	m.scoringErrors = m.counter("scoring_errors_total", "Games that failed to score or store")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Current number of queued scoring jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Scoring jobs enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Scoring jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Scoring jobs rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Running scoring workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Worker job failures")

	m.fetches = m.counterVec("remote_fetches_total", "Remote source requests by source and result", "source", "result")
	m.fetchLatency = m.histogramVec("remote_fetch_latency_milliseconds", "Remote source latency in milliseconds", "source")
	m.nameCacheHits = m.counterVec("name_cache_lookups_total", "Player name cache lookups by result", "result")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Store operation latency in milliseconds", "operation")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.storedGames = m.gauge("stored_games", "Scorecards in the store")
	m.memoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.goroutineCount = m.gauge("system_goroutines", "Running goroutines")
	m.gcPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

// RecordClassification counts one classified plate appearance.
func RecordClassification(kind string) {
	globalManager.playsClassified.WithLabelValues(kind).Inc()
}

// RecordUnknownPlay counts one play that no rule recognized.
func RecordUnknownPlay() {
	globalManager.unknownPlays.Inc()
}

// RecordKeyPlays adds n key plays.
func RecordKeyPlays(n int) {
	globalManager.keyPlays.Add(float64(n))
}

// RecordGameScored increments the scored games counter.
func RecordGameScored() {
	globalManager.gamesScored.Inc()
}

// RecordGameDuplicate increments the duplicate submissions counter.
func RecordGameDuplicate() {
	globalManager.gamesDuplicate.Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordFetch records one remote request; result is "ok", "retry" or "error".
func RecordFetch(source, result string, latencyMs float64) {
	globalManager.fetches.WithLabelValues(source, result).Inc()
	globalManager.fetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordNameCache records a name cache lookup as "hit" or "miss".
func RecordNameCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.nameCacheHits.WithLabelValues(result).Inc()
}

// RecordStoreLatency records a store operation latency.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordError records an error with component and type labels.
func RecordError(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// UpdateStoredGames sets the number of stored scorecards.
func UpdateStoredGames(n int) {
	globalManager.storedGames.Set(float64(n))
}

// UpdateSystemMemoryUsage sets the heap bytes allocated.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.memoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.goroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.gcPauseTime.Observe(ms)
}
