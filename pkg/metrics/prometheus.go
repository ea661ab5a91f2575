// Package metrics provides Prometheus metrics for the riskd service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the riskd service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Ingest metrics
	samplesIngested       prometheus.Counter
	malformedReadings     prometheus.Counter
	classifications       *prometheus.CounterVec
	classifierFailures    prometheus.Counter
	classificationLatency prometheus.Histogram

	// Store metrics
	storeWrites        prometheus.Counter
	storeWriteFailures prometheus.Counter
	storeQueries       prometheus.Counter
	storeQueryFailures prometheus.Counter
	storeQueryLatency  prometheus.Histogram

	// Alert metrics
	alertsPublished      prometheus.Counter
	alertPublishFailures prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "riskd",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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
	factory := promauto.With(m.registry)

	m.samplesIngested = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_ingested_total",
		Help:      "Total number of health samples accepted for processing",
	})

	m.malformedReadings = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "malformed_readings_total",
		Help:      "Total number of malformed metric entries tolerated at ingest",
	})

	m.classifications = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classifications_total",
		Help:      "Total number of risk classifications by resulting label",
	}, []string{"label"})

	m.classifierFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classifier_failures_total",
		Help:      "Total number of delegate classifier call failures",
	})

	m.classificationLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_latency_ms",
		Help:      "Risk classification latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_writes_total",
		Help:      "Total number of risk records written to the store",
	})

	m.storeWriteFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_failures_total",
		Help:      "Total number of swallowed store write failures",
	})

	m.storeQueries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_queries_total",
		Help:      "Total number of latest-record store queries",
	})

	m.storeQueryFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_failures_total",
		Help:      "Total number of failed store queries",
	})

	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_ms",
		Help:      "Store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.alertsPublished = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alerts_published_total",
		Help:      "Total number of high-risk alerts published",
	})

	m.alertPublishFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alert_publish_failures_total",
		Help:      "Total number of swallowed alert publish failures",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_ms",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers delegating to the global manager.

func RecordSampleIngested() {
	if globalManager != nil && globalManager.enabled {
		globalManager.samplesIngested.Inc()
	}
}

func RecordMalformedReading() {
	if globalManager != nil && globalManager.enabled {
		globalManager.malformedReadings.Inc()
	}
}

func RecordClassification(label string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.classifications.WithLabelValues(label).Inc()
	}
}

func RecordClassifierFailure() {
	if globalManager != nil && globalManager.enabled {
		globalManager.classifierFailures.Inc()
	}
}

func RecordClassificationLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.classificationLatency.Observe(latencyMs)
	}
}

func RecordStoreWrite() {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeWrites.Inc()
	}
}

func RecordStoreWriteFailure() {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeWriteFailures.Inc()
	}
}

func RecordStoreQuery() {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeQueries.Inc()
	}
}

func RecordStoreQueryFailure() {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeQueryFailures.Inc()
	}
}

func RecordStoreQueryLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeQueryLatency.Observe(latencyMs)
	}
}

func RecordAlertPublished() {
	if globalManager != nil && globalManager.enabled {
		globalManager.alertsPublished.Inc()
	}
}

func RecordAlertPublishFailure() {
	if globalManager != nil && globalManager.enabled {
		globalManager.alertPublishFailures.Inc()
	}
}

func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
	}
}

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}
