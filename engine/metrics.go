package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus-compatible instrumentation for a Runner.
// Grounded on graph/metrics.go's PrometheusMetrics, relabeled from
// graph-node concepts to phase/module concepts.
type Metrics struct {
	activeModules  prometheus.Gauge
	phaseDuration  *prometheus.HistogramVec
	operationsTot  *prometheus.CounterVec
	checkerVerdict *prometheus.CounterVec
	timeouts       prometheus.Counter

	enabled bool
}

// NewMetrics registers the "fallout_*" metric family with registry (use
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for isolation in tests).
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,
		activeModules: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fallout",
			Name:      "active_modules",
			Help:      "Current number of module instances executing concurrently",
		}),
		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fallout",
			Name:      "phase_duration_ms",
			Help:      "Phase wall-clock duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 30000, 120000},
		}, []string{"test_run_id"}),
		operationsTot: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fallout",
			Name:      "operations_total",
			Help:      "Cumulative Operations appended to the history, by type",
		}, []string{"type"}),
		checkerVerdict: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fallout",
			Name:      "checker_verdicts_total",
			Help:      "Checker verdicts produced, by checker name and verdict",
		}, []string{"checker", "verdict"}),
		timeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fallout",
			Name:      "phase_timeouts_total",
			Help:      "Phase-level hang timeouts triggered",
		}),
	}
}

func (m *Metrics) observeOperation(op Operation) {
	if m == nil || !m.enabled {
		return
	}
	m.operationsTot.WithLabelValues(string(op.Type)).Inc()
}

// Append lets Metrics itself act as a History Sink, so a Runner can attach
// it via WithSink/WithMetrics without a separate adapter type.
func (m *Metrics) Append(op Operation) { m.observeOperation(op) }

func (m *Metrics) setActiveModules(n int) {
	if m == nil || !m.enabled {
		return
	}
	m.activeModules.Set(float64(n))
}

func (m *Metrics) observePhaseDuration(testRunID string, d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.phaseDuration.WithLabelValues(testRunID).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) observeCheckerVerdict(checker string, valid bool) {
	if m == nil || !m.enabled {
		return
	}
	verdict := "valid"
	if !valid {
		verdict = "invalid"
	}
	m.checkerVerdict.WithLabelValues(checker, verdict).Inc()
}

func (m *Metrics) incTimeout() {
	if m == nil || !m.enabled {
		return
	}
	m.timeouts.Inc()
}
