// Package metrics provides Prometheus metrics for a scorestats run.
//
// A run is a short-lived batch job, so metrics are collected into a private
// registry and pushed to a Pushgateway at the end instead of being scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Query outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Manager owns the metrics of one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         *prometheus.Registry

	// Repository
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	rowsScanned   *prometheus.CounterVec

	// Results
	scoresLoaded  prometheus.Gauge
	spreadEntries prometheus.Gauge
	statistics    *prometheus.GaugeVec

	// Run
	runDuration     prometheus.Gauge
	lastSuccessUnix prometheus.Gauge
	runErrors       *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorestats",
		subsystem:        "report",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.queries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queries_total",
		Help:        "Score queries executed by name and outcome",
		ConstLabels: m.constLabels,
	}, []string{"query", "outcome"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "query_duration_seconds",
		Help:        "Score query latency in seconds, including row scanning",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"query"})

	m.rowsScanned = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_scanned_total",
		Help:        "Rows scanned from score queries",
		ConstLabels: m.constLabels,
	}, []string{"query"})

	m.scoresLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scores_loaded",
		Help:        "Number of qualifying scores loaded in the last run",
		ConstLabels: m.constLabels,
	})

	m.spreadEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "spread_entries",
		Help:        "Number of distinct score values in the last score spread",
		ConstLabels: m.constLabels,
	})

	m.statistics = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score_statistic",
		Help:        "Summary statistics of the last run by statistic name",
		ConstLabels: m.constLabels,
	}, []string{"statistic"})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of the last run in seconds",
		ConstLabels: m.constLabels,
	})

	m.lastSuccessUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix time of the last run that printed both reports",
		ConstLabels: m.constLabels,
	})

	m.runErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_errors_total",
		Help:        "Run failures by stage",
		ConstLabels: m.constLabels,
	}, []string{"stage"})
}

// RecordQuery records one query execution.
func (m *Manager) RecordQuery(query, outcome string, rows int, d time.Duration) {
	m.queries.WithLabelValues(query, outcome).Inc()
	m.queryDuration.WithLabelValues(query).Observe(d.Seconds())
	m.rowsScanned.WithLabelValues(query).Add(float64(rows))
}

// UpdateScoresLoaded sets the number of raw scores loaded.
func (m *Manager) UpdateScoresLoaded(n int) { m.scoresLoaded.Set(float64(n)) }

// UpdateSpreadEntries sets the number of distinct scores in the spread.
func (m *Manager) UpdateSpreadEntries(n int) { m.spreadEntries.Set(float64(n)) }

// UpdateStatistic sets one named summary statistic, e.g. "mean".
func (m *Manager) UpdateStatistic(name string, value float64) {
	m.statistics.WithLabelValues(name).Set(value)
}

// RecordRun records the run duration and, when ok, the success timestamp.
func (m *Manager) RecordRun(d time.Duration, ok bool) {
	m.runDuration.Set(d.Seconds())
	if ok {
		m.lastSuccessUnix.SetToCurrentTime()
	}
}

// RecordRunError counts a failure in the named stage (config, connect, query).
func (m *Manager) RecordRunError(stage string) { m.runErrors.WithLabelValues(stage).Inc() }

// Registry returns the registry the manager's metrics live in.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Push sends every metric in the manager's registry to the Pushgateway at url,
// replacing the metrics previously pushed for the same job and grouping.
func (m *Manager) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	p := push.New(url, job).Gatherer(m.registry)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }
