// Package metrics provides Prometheus metrics for the hype feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Store metrics
	eventCount         prometheus.Gauge
	storeWrites        prometheus.Counter
	snapshotsPublished prometheus.Counter
	watcherCount       prometheus.Gauge

	// Feed metrics
	feedRecomputes prometheus.Counter
	feedLatency    prometheus.Histogram
	feedSize       prometheus.Gauge

	// Hype ledger metrics
	hypeApplied prometheus.Counter
	hypeRemoved prometheus.Counter
	hypeErrors  prometheus.Counter

	// Toggle queue metrics
	toggleEnqueues      prometheus.Counter
	toggleEnqueueErrors prometheus.Counter
	toggleQueueSize     prometheus.Gauge
	toggleQueueCapacity prometheus.Gauge
	workerCount         prometheus.Gauge

	// Geocoding metrics
	geocodeRequests *prometheus.CounterVec
	geocodeLatency  *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	wsClients           prometheus.Gauge

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// Runtime metrics
	goroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "undrgrnd",
		subsystem:        "hype",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.eventCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_total", Help: "Number of events currently stored.",
	})
	m.storeWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_writes_total", Help: "Total writes applied to the event store.",
	})
	m.snapshotsPublished = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_snapshots_published_total", Help: "Snapshots fanned out to watchers.",
	})
	m.watcherCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_watchers", Help: "Active snapshot watchers.",
	})

	m.feedRecomputes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feed_recomputes_total", Help: "Feed rank/filter invocations.",
	})
	m.feedLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feed_latency_ms", Help: "Feed recompute latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.feedSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feed_size", Help: "Events in the last computed feed.",
	})

	m.hypeApplied = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "hype_applied_total", Help: "Hype reactions added.",
	})
	m.hypeRemoved = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "hype_removed_total", Help: "Hype reactions removed.",
	})
	m.hypeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "hype_errors_total", Help: "Failed hype toggles.",
	})

	m.toggleEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "toggle_enqueues_total", Help: "Toggle jobs accepted by the queue.",
	})
	m.toggleEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "toggle_enqueue_errors_total", Help: "Toggle jobs rejected by the queue.",
	})
	m.toggleQueueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "toggle_queue_size", Help: "Toggle jobs waiting in the queue.",
	})
	m.toggleQueueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "toggle_queue_capacity", Help: "Configured toggle queue capacity.",
	})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "toggle_workers", Help: "Toggle workers in the pool.",
	})

	m.geocodeRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "geocode_requests_total", Help: "Geocoding requests by kind and status.",
	}, []string{"kind", "status"})
	m.geocodeLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "geocode_latency_ms", Help: "Geocoding request latency in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"kind"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total", Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_ms", Help: "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
	m.wsClients = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ws_clients", Help: "Connected live-feed WebSocket clients.",
	})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total", Help: "Errors by component and kind.",
	}, []string{"component", "kind"})

	m.goroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "goroutines", Help: "Current number of goroutines.",
	})
}

// GetRegistry returns the gatherer backing the global manager, for serving.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func UpdateEventCount(n int)       { globalManager.eventCount.Set(float64(n)) }
func RecordStoreWrite()            { globalManager.storeWrites.Inc() }
func RecordSnapshotPublished()     { globalManager.snapshotsPublished.Inc() }
func UpdateWatcherCount(n int)     { globalManager.watcherCount.Set(float64(n)) }
func RecordFeedRecompute()         { globalManager.feedRecomputes.Inc() }
func RecordFeedLatency(ms float64) { globalManager.feedLatency.Observe(ms) }
func UpdateFeedSize(n int)         { globalManager.feedSize.Set(float64(n)) }
func RecordHypeApplied()           { globalManager.hypeApplied.Inc() }
func RecordHypeRemoved()           { globalManager.hypeRemoved.Inc() }
func RecordHypeError()             { globalManager.hypeErrors.Inc() }
func RecordToggleEnqueue()         { globalManager.toggleEnqueues.Inc() }
func RecordToggleEnqueueError()    { globalManager.toggleEnqueueErrors.Inc() }
func UpdateToggleQueueSize(n int)  { globalManager.toggleQueueSize.Set(float64(n)) }
func UpdateToggleQueueCapacity(n int) {
	globalManager.toggleQueueCapacity.Set(float64(n))
}
func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }
func UpdateWSClients(n int)   { globalManager.wsClients.Set(float64(n)) }

func RecordGeocodeRequest(kind, status string) {
	globalManager.geocodeRequests.WithLabelValues(kind, status).Inc()
}

func RecordGeocodeLatency(kind string, ms float64) {
	globalManager.geocodeLatency.WithLabelValues(kind).Observe(ms)
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

func UpdateGoroutineCount(n int) { globalManager.goroutineCount.Set(float64(n)) }
