package engine

import (
	"context"
	"fmt"
)

// Module is the contract external module implementations satisfy (§4.B).
// It is deliberately a plain interface rather than a generic type —
// modules exchange Operations with opaque `any` payloads, not a shared
// typed state the way the teacher's graph.Node[S] exchanges typed deltas,
// because sibling modules in a phase need not agree on a common state
// shape.
type Module interface {
	// RequiredProviders lists ensemble capabilities this module needs.
	RequiredProviders() []string
	// SupportedProducts lists target systems this module is known to work
	// against (empty means product-agnostic).
	SupportedProducts() []string
	// PropertySpecs describes this module's property group for validation.
	PropertySpecs() []PropertySpec

	// Setup runs once (or before every Run, depending on
	// UseGlobalSetupTeardown) and should be idempotent. Optional: modules
	// that need no setup simply do nothing.
	Setup(ctx context.Context, ens Ensemble, props map[string]any) error
	// Run performs the module's work, emitting Operations through mi.
	// MUST emit at least one Operation or the engine synthesizes an error
	// Operation with the exact message "No Operations were emitted during
	// run".
	Run(ctx context.Context, mi *ModuleInstance, ens Ensemble, props map[string]any) error
	// Teardown runs once (or after every Run) and should be idempotent.
	Teardown(ctx context.Context, ens Ensemble, props map[string]any) error

	// Lifetime reports this module class's lifetime. The bool is true when
	// the lifetime is hard-coded by the class, false when the `lifetime`
	// property governs it.
	Lifetime() (Lifetime, bool)
	// RunToEndMethod reports AUTOMATIC or MANUAL; meaningless for RunOnce
	// modules.
	RunToEndMethod() RunToEndMethod
	// UseGlobalSetupTeardown reports the setup/teardown placement policy
	// from §4.B.
	UseGlobalSetupTeardown() bool
}

// BaseModule supplies zero-value defaults for every Module method so
// concrete module types need only embed it and override what they need —
// mirroring the teacher's NodeFunc adapter convention of minimizing
// boilerplate for simple implementations.
type BaseModule struct{}

func (BaseModule) RequiredProviders() []string                              { return nil }
func (BaseModule) SupportedProducts() []string                              { return nil }
func (BaseModule) PropertySpecs() []PropertySpec                            { return nil }
func (BaseModule) Setup(context.Context, Ensemble, map[string]any) error    { return nil }
func (BaseModule) Teardown(context.Context, Ensemble, map[string]any) error { return nil }
func (BaseModule) Lifetime() (Lifetime, bool)                               { return RunOnce, false }
func (BaseModule) RunToEndMethod() RunToEndMethod                           { return Automatic }
func (BaseModule) UseGlobalSetupTeardown() bool                             { return false }

// ModuleInstance wraps a Module implementation with the state machine,
// lifecycle marker emission, and abort-check plumbing from §3/§4.B. Exactly
// one ModuleInstance exists per phase-tree leaf; it does not outlive its
// phase.
type ModuleInstance struct {
	Name         string // instance_name, unique within a test run
	ModuleRef    string // registered short name
	Properties   map[string]any
	Lifetime     Lifetime
	RunToEndMeth RunToEndMethod

	impl    Module
	history *History
	ens     Ensemble

	state   State
	emitted bool
	aborted func() bool
	now     func() int64

	// counter is set by the Scheduler for RUN_TO_END_OF_PHASE instances so
	// their Run can poll UnfinishedRunOnceModules (§4.C Step 4). Nil for
	// RUN_ONCE instances.
	counter *unfinishedCounter

	// timers is the run's single shared timer wheel (§5 "Timers"), set by
	// the Runner on every leaf before the first phase starts.
	timers *Timers
}

// Timers returns the run's shared timer wheel, for scheduling delayed
// callbacks without spawning a goroutine per timer (§5). Nil until the
// Runner has called SetTimers, which happens before any phase runs.
func (mi *ModuleInstance) Timers() *Timers { return mi.timers }

// SetTimers injects the run's shared timer wheel. Called once per instance
// by the Runner; exported so a host driving ModuleInstances outside a
// Runner (e.g. a test) can supply its own.
func (mi *ModuleInstance) SetTimers(t *Timers) { mi.timers = t }

// UnfinishedRunOnceModules reports how many of this instance's sibling
// RUN_ONCE modules (including nested sub-phases, counted as one each) have
// not yet completed. A MANUAL RUN_TO_END_OF_PHASE module's Run is expected
// to poll this and return once it reaches zero (§4.C Step 4). Zero for a
// RUN_ONCE instance, which has no such counter.
func (mi *ModuleInstance) UnfinishedRunOnceModules() int64 {
	if mi.counter == nil {
		return 0
	}
	return mi.counter.get()
}

// NewModuleInstance constructs a ModuleInstance bound to a history and an
// ensemble; the instance starts in state CREATED.
func NewModuleInstance(name, moduleRef string, impl Module, props map[string]any, lifetime Lifetime, method RunToEndMethod, h *History, ens Ensemble) *ModuleInstance {
	return &ModuleInstance{
		Name:         name,
		ModuleRef:    moduleRef,
		Properties:   props,
		Lifetime:     lifetime,
		RunToEndMeth: method,
		impl:         impl,
		history:      h,
		ens:          ens,
		state:        StateCreated,
		aborted:      func() bool { return false },
	}
}

// State reports the instance's current lifecycle state.
func (mi *ModuleInstance) State() State { return mi.state }

// SetAbortedCheck injects the cooperative abort probe (§4.B, §4.G).
// Registering (or re-registering) is idempotent: later calls simply
// replace the closure.
func (mi *ModuleInstance) SetAbortedCheck(fn func() bool) {
	if fn == nil {
		fn = func() bool { return false }
	}
	mi.aborted = fn
}

// Aborted reports whether the workload's abort flag has been observed set.
func (mi *ModuleInstance) Aborted() bool { return mi.aborted() }

// Emit records an Operation attributed to this instance, stamped with the
// Runner's clock. Per §3, emitting outside RUNNING is a protocol violation:
// it is recorded as an error Operation and ErrEmitOutsideRun is returned so
// the caller (normally the module's own Run) can decide whether to keep
// going.
func (mi *ModuleInstance) Emit(opType OpType, mediaType string, value any) error {
	if mi.state != StateRunning {
		mi.history.Append(Operation{
			Type: OpError, TimeNS: mi.now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef,
			Value: fmt.Sprintf("emit outside RUNNING (state=%s)", mi.state),
		})
		return ErrEmitOutsideRun
	}
	mi.emitted = true
	mi.history.Append(Operation{
		Type: opType, TimeNS: mi.now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef,
		MediaType: mediaType, Value: value,
	})
	return nil
}

// runOnce drives Setup (if not global) → invoke marker → Run → end marker
// → Teardown (if not global), converting panics and returned errors to
// `error` Operations rather than propagating them — module runtime errors
// never abort sibling modules (§4.B, §7).
func (mi *ModuleInstance) runOnce(ctx context.Context, now func() int64) {
	mi.now = now
	defer mi.recoverToError(now)

	if !mi.impl.UseGlobalSetupTeardown() {
		if err := mi.safeSetup(ctx); err != nil {
			mi.state = StateSetupFailed
			mi.history.Append(Operation{Type: OpError, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef, Value: err.Error()})
			return
		}
		mi.state = StateSetupOK
	}

	mi.history.Append(Operation{Type: OpInvoke, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef})
	mi.state = StateRunning
	mi.emitted = false

	err := mi.safeRun(ctx)

	if err != nil {
		mi.history.Append(Operation{Type: OpError, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef, Value: err.Error()})
	} else if !mi.emitted {
		mi.history.Append(Operation{Type: OpError, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef, Value: ErrNoEmission.Error()})
	}

	mi.history.Append(Operation{Type: OpEnd, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef})
	mi.state = StateCompleted

	// The state stays COMPLETED after a per-run teardown; TORN_DOWN is set
	// only by globalTeardown.
	if !mi.impl.UseGlobalSetupTeardown() {
		if err := mi.safeTeardown(ctx); err != nil {
			mi.history.Append(Operation{Type: OpError, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef, Value: err.Error()})
		}
	}
}

// globalSetup runs this instance's Setup exactly once, for modules whose
// UseGlobalSetupTeardown is true (§4.B). Called by the Runner before the
// first phase starts.
func (mi *ModuleInstance) globalSetup(ctx context.Context) error {
	err := mi.safeSetup(ctx)
	if err != nil {
		mi.state = StateSetupFailed
	} else {
		mi.state = StateSetupOK
	}
	return err
}

// globalTeardown runs this instance's Teardown exactly once, after the
// last phase of the workload completes.
func (mi *ModuleInstance) globalTeardown(ctx context.Context) error {
	err := mi.safeTeardown(ctx)
	mi.state = StateTornDown
	return err
}

func (mi *ModuleInstance) safeSetup(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in setup: %v", r)
		}
	}()
	return mi.impl.Setup(ctx, mi.ens, mi.Properties)
}

func (mi *ModuleInstance) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in run: %v", r)
		}
	}()
	return mi.impl.Run(ctx, mi, mi.ens, mi.Properties)
}

func (mi *ModuleInstance) safeTeardown(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in teardown: %v", r)
		}
	}()
	return mi.impl.Teardown(ctx, mi.ens, mi.Properties)
}

// recoverToError is a last-resort backstop: if something outside the
// safeX wrappers panics (e.g. scheduler bookkeeping around this
// instance), record it rather than crash the whole workload.
func (mi *ModuleInstance) recoverToError(now func() int64) {
	if r := recover(); r != nil {
		mi.history.Append(Operation{
			Type: OpError, TimeNS: now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef,
			Value: fmt.Sprintf("unrecovered panic: %v", r),
		})
		mi.state = StateCompleted
	}
}
