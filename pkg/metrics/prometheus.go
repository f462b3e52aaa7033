// Package metrics provides Prometheus metrics for the fable scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Path calibration
	pathsEnumerated     prometheus.Counter
	enumerationDuration prometheus.Histogram
	calibrationDuration prometheus.Histogram
	scenariosSkipped    prometheus.Counter

	// Play-time scoring and awarding
	sessionsScored    prometheus.Counter
	sessionsDuplicate prometheus.Counter
	badgesAwarded     prometheus.Counter

	// Storage health
	storeErrors prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fable",
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

	m.pathsEnumerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "paths_enumerated_total",
		Help:      "Total number of scenario paths enumerated during calibration",
	})

	m.enumerationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enumeration_duration_milliseconds",
		Help:      "Histogram of per-scenario path enumeration duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.calibrationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calibration_duration_milliseconds",
		Help:      "Histogram of whole-bundle threshold calibration duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.scenariosSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calibration_scenarios_skipped_total",
		Help:      "Total number of bundle scenario references that failed to resolve",
	})

	m.sessionsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_scored_total",
		Help:      "Total number of sessions scored into a PlayerScenarioScore record",
	})

	m.sessionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_duplicate_total",
		Help:      "Total number of scoring attempts skipped because the scenario was already scored",
	})

	m.badgesAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "badges_awarded_total",
		Help:      "Total number of permanent badge awards issued",
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of repository failures observed by the engine",
	})
}

// RecordPathsEnumerated adds to the enumerated-path counter.
func RecordPathsEnumerated(count int) {
	if globalManager.enabled {
		globalManager.pathsEnumerated.Add(float64(count))
	}
}

// RecordEnumerationDuration records one scenario's enumeration time.
func RecordEnumerationDuration(durationMs float64) {
	if globalManager.enabled {
		globalManager.enumerationDuration.Observe(durationMs)
	}
}

// RecordCalibrationDuration records one bundle calibration's total time.
func RecordCalibrationDuration(durationMs float64) {
	if globalManager.enabled {
		globalManager.calibrationDuration.Observe(durationMs)
	}
}

// RecordScenarioSkipped counts a bundle scenario reference that did not resolve.
func RecordScenarioSkipped() {
	if globalManager.enabled {
		globalManager.scenariosSkipped.Inc()
	}
}

// RecordSessionScored counts a successfully persisted score record.
func RecordSessionScored() {
	if globalManager.enabled {
		globalManager.sessionsScored.Inc()
	}
}

// RecordSessionDuplicate counts a scoring attempt skipped as already scored.
func RecordSessionDuplicate() {
	if globalManager.enabled {
		globalManager.sessionsDuplicate.Inc()
	}
}

// RecordBadgesAwarded adds to the award counter.
func RecordBadgesAwarded(count int) {
	if globalManager.enabled {
		globalManager.badgesAwarded.Add(float64(count))
	}
}

// RecordStoreError counts a repository failure.
func RecordStoreError() {
	if globalManager.enabled {
		globalManager.storeErrors.Inc()
	}
}

// GetRegistry returns the custom registry for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
