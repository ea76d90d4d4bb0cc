package engine

import (
	"context"
	"sync/atomic"
	"time"
)

// Runner drives one Workload end to end: global setup, phases 1..N in
// strict sequence (§4.D, Testable Property 5: phase N's effects
// happen-before phase N+1's), global teardown, then the Checker pipeline
// against the frozen History (§4.D, §4.E). Grounded on the teacher's
// top-level graph.Engine.Run orchestration (graph/engine.go), generalized
// from a single DAG walk to a sequential phase list each internally
// scheduled by a Scheduler.
type Runner struct {
	Registry *Registry
	Ensemble Ensemble
	Abort    *AbortFlag

	cfg runnerConfig
}

// NewRunner builds a Runner from functional options (§4.D, §6).
func NewRunner(registry *Registry, ens Ensemble, opts ...Option) *Runner {
	cfg := defaultRunnerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Runner{Registry: registry, Ensemble: ens, Abort: &AbortFlag{}, cfg: cfg}
}

// Run executes wl and returns the engine's exit verdict (§6).
func (r *Runner) Run(ctx context.Context, wl *Workload) Verdict {
	runStart := time.Now()
	now := func() int64 { return time.Since(runStart).Nanoseconds() }

	history := wl.History
	if history == nil {
		history = NewHistory()
	}
	for _, s := range r.cfg.sinks {
		history.AddSink(s)
	}
	if r.cfg.metrics != nil {
		history.AddSink(r.cfg.metrics)
	}

	leaves := collectLeaves(wl.Phases)
	check := r.Abort.Check()
	timers := NewTimers()
	defer timers.Stop()
	for _, mi := range leaves {
		mi.SetAbortedCheck(check)
		mi.SetTimers(timers)
	}

	setupFailed := r.runGlobalSetup(ctx, leaves, history, now)

	var active atomic.Int64
	if !setupFailed {
		for _, phase := range wl.Phases {
			if r.Abort.IsSet() {
				break
			}
			r.runPhase(ctx, phase, history, now, &active)
		}
	}

	r.runGlobalTeardown(ctx, leaves, history, now)

	ops := history.Snapshot()
	pipeline := r.pipelineFor(wl)
	diags := pipeline.Evaluate(ctx, ops)

	return Verdict{
		Pass:                  allValid(diags),
		Aborted:               r.Abort.IsSet(),
		PerCheckerDiagnostics: diags,
		OperationCount:        len(ops),
		DurationNS:            now(),
	}
}

func (r *Runner) runPhase(ctx context.Context, phase *Phase, history *History, now func() int64, active *atomic.Int64) {
	start := time.Now()
	sched := &Scheduler{
		History: history, Ensemble: r.Ensemble, Now: now, Abort: r.Abort,
		Metrics: r.cfg.metrics, Logger: r.cfg.logger, PhaseTimeout: r.cfg.phaseTimeout,
		Active: active,
	}
	sched.RunPhase(ctx, phase)
	if r.cfg.metrics != nil {
		r.cfg.metrics.observePhaseDuration(r.Ensemble.TestRunID, time.Since(start))
	}
}

// runGlobalSetup calls Setup once for every leaf with UseGlobalSetupTeardown
// true (§4.B). Returns true if any such Setup failed, in which case the
// Runner skips every phase — a workload cannot meaningfully run with a
// module whose one-time setup never happened.
func (r *Runner) runGlobalSetup(ctx context.Context, leaves []*ModuleInstance, history *History, now func() int64) bool {
	failed := false
	for _, mi := range leaves {
		if !mi.impl.UseGlobalSetupTeardown() {
			continue
		}
		if err := mi.globalSetup(ctx); err != nil {
			failed = true
			history.Append(Operation{
				Type: OpError, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef,
				Value: err.Error(),
			})
		}
	}
	return failed
}

// runGlobalTeardown calls Teardown once for every leaf with
// UseGlobalSetupTeardown true whose Setup succeeded, regardless of whether
// the run was aborted or any phase failed — teardown is best-effort cleanup.
func (r *Runner) runGlobalTeardown(ctx context.Context, leaves []*ModuleInstance, history *History, now func() int64) {
	for _, mi := range leaves {
		if !mi.impl.UseGlobalSetupTeardown() || mi.State() == StateSetupFailed {
			continue
		}
		if err := mi.globalTeardown(ctx); err != nil {
			history.Append(Operation{
				Type: OpError, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef,
				Value: err.Error(),
			})
		}
	}
}

func (r *Runner) pipelineFor(wl *Workload) CheckerPipeline {
	p := CheckerPipeline{Metrics: r.cfg.metrics}
	for _, cb := range wl.Checkers {
		p.Checkers = append(p.Checkers, cb)
	}
	for _, ab := range wl.ArtifactCheckers {
		p.ArtifactCheckers = append(p.ArtifactCheckers, ab)
	}
	return p
}

func collectLeaves(phases []*Phase) []*ModuleInstance {
	var out []*ModuleInstance
	var walk func(p *Phase)
	walk = func(p *Phase) {
		for _, c := range p.Children {
			if c.SubPhase != nil {
				walk(c.SubPhase)
			} else {
				out = append(out, c.Instance)
			}
		}
	}
	for _, p := range phases {
		walk(p)
	}
	return out
}

func allValid(diags []Diagnostic) bool {
	for _, d := range diags {
		if !d.Valid {
			return false
		}
	}
	return true
}
