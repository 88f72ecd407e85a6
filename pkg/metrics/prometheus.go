// Package metrics provides Prometheus metrics for the coaching analysis
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the analysis pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Pipeline throughput
	sessionsAnalyzed prometheus.Counter
	framesIngested   *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec

	// Quality indicators
	fallbackSegmentations prometheus.Counter
	suppressedIssues      prometheus.Counter
	componentErrors       *prometheus.CounterVec

	// Persistence
	ledgerAppends prometheus.Counter
	sessionsSaved prometheus.Counter

	// Latest scores per model family
	overallScore *prometheus.GaugeVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "coach",
		subsystem:        "analysis",
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

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sessionsAnalyzed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_analyzed_total",
		Help:      "Total number of sessions analyzed end to end",
	})

	m.framesIngested = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "frames_ingested_total",
			Help:      "Total number of frames read from feature tables, by subject",
		},
		[]string{"subject"},
	)

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_duration_milliseconds",
			Help:      "Histogram of per-stage pipeline duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.fallbackSegmentations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fallback_segmentations_total",
		Help:      "Total number of segmentations that used the proportional fallback split",
	})

	m.suppressedIssues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suppressed_issues_total",
		Help:      "Total number of issues suppressed by the adaptive engine",
	})

	m.componentErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "component_errors_total",
			Help:      "Total number of errors by pipeline component",
		},
		[]string{"component"},
	)

	m.ledgerAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_appends_total",
		Help:      "Total number of outcome records appended to the ledger",
	})

	m.sessionsSaved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_saved_total",
		Help:      "Total number of session records persisted",
	})

	m.overallScore = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "overall_score",
			Help:      "Latest overall similarity score by model family",
		},
		[]string{"model"},
	)
}

// RecordSessionAnalyzed increments the analyzed-sessions counter.
func (m *Manager) RecordSessionAnalyzed() {
	if m.enabled {
		m.sessionsAnalyzed.Inc()
	}
}

// RecordFramesIngested adds ingested frames for one subject.
func (m *Manager) RecordFramesIngested(subject string, count int) {
	if m.enabled {
		m.framesIngested.WithLabelValues(subject).Add(float64(count))
	}
}

// RecordStageDuration observes one pipeline stage's elapsed time.
func (m *Manager) RecordStageDuration(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(float64(d.Milliseconds()))
	}
}

// RecordFallbackSegmentation increments the fallback counter.
func (m *Manager) RecordFallbackSegmentation() {
	if m.enabled {
		m.fallbackSegmentations.Inc()
	}
}

// RecordSuppressedIssues adds to the suppressed-issues counter.
func (m *Manager) RecordSuppressedIssues(count int) {
	if m.enabled && count > 0 {
		m.suppressedIssues.Add(float64(count))
	}
}

// RecordComponentError increments the error counter for a component.
func (m *Manager) RecordComponentError(component string) {
	if m.enabled {
		m.componentErrors.WithLabelValues(component).Inc()
	}
}

// RecordLedgerAppends adds appended outcome records.
func (m *Manager) RecordLedgerAppends(count int) {
	if m.enabled && count > 0 {
		m.ledgerAppends.Add(float64(count))
	}
}

// RecordSessionSaved increments the persisted-sessions counter.
func (m *Manager) RecordSessionSaved() {
	if m.enabled {
		m.sessionsSaved.Inc()
	}
}

// SetOverallScore publishes the latest overall score for a model family.
func (m *Manager) SetOverallScore(model string, score float64) {
	if m.enabled {
		m.overallScore.WithLabelValues(model).Set(score)
	}
}

// Get returns the global metrics manager.
func Get() *Manager { return globalManager }

// Registry returns the custom registry backing the global manager, for
// mounting the /metrics handler.
func Registry() *prometheus.Registry { return customRegistry }
