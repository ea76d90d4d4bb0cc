package engine

import "time"

// Option is a functional option configuring a Runner, grounded on the
// teacher's graph.Option/engineConfig pattern (graph/options.go).
type Option func(*runnerConfig)

type runnerConfig struct {
	phaseTimeout time.Duration // 0 = no timeout, per open question #1 in DESIGN.md
	sinks        []Sink
	metrics      *Metrics
	logger       Logger
}

func defaultRunnerConfig() runnerConfig {
	return runnerConfig{logger: NullLogger{}}
}

// WithPhaseTimeout sets the per-phase hang timeout (§4.C "Termination
// guarantees", §7 "Hang / timeout"). Zero (the default) disables it: a
// RUN_TO_END_OF_PHASE module that never returns hangs the phase forever,
// matching the open-question decision in DESIGN.md to keep this
// configurable but default to "no timeout".
func WithPhaseTimeout(d time.Duration) Option {
	return func(c *runnerConfig) { c.phaseTimeout = d }
}

// WithSink adds a History broadcast target active for the whole run.
func WithSink(s Sink) Option {
	return func(c *runnerConfig) { c.sinks = append(c.sinks, s) }
}

// WithMetrics attaches a Metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(c *runnerConfig) { c.metrics = m }
}

// WithLogger sets the Runner's own diagnostic logger (distinct from any
// per-group Logger the Ensemble carries).
func WithLogger(l Logger) Option {
	return func(c *runnerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
