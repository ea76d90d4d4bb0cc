package engine

import (
	"context"
	"errors"
	"testing"
)

type fakeModule struct {
	BaseModule
	runFn func(ctx context.Context, mi *ModuleInstance) error
}

func (m fakeModule) Run(ctx context.Context, mi *ModuleInstance, ens Ensemble, props map[string]any) error {
	if m.runFn == nil {
		return nil
	}
	return m.runFn(ctx, mi)
}

func newTestInstance(t *testing.T, impl Module) (*ModuleInstance, *History) {
	t.Helper()
	h := NewHistory()
	mi := NewModuleInstance("inst-1", "fake", impl, nil, RunOnce, Automatic, h, Ensemble{})
	return mi, h
}

func TestModuleInstance_EmitDuringRun(t *testing.T) {
	impl := fakeModule{runFn: func(ctx context.Context, mi *ModuleInstance) error {
		if mi.State() != StateRunning {
			t.Fatalf("Run invoked with state %s, want RUNNING", mi.State())
		}
		return mi.Emit(OpOK, "text/plain", "done")
	}}
	mi, h := newTestInstance(t, impl)

	now := func() int64 { return 0 }
	mi.runOnce(context.Background(), now)

	if mi.State() != StateCompleted {
		t.Fatalf("final state = %s, want COMPLETED", mi.State())
	}
	ops := h.Snapshot()
	var sawOK bool
	for _, op := range ops {
		if op.Type == OpOK && op.Value == "done" {
			sawOK = true
		}
		if op.Type == OpError {
			t.Fatalf("unexpected error operation: %v", op)
		}
	}
	if !sawOK {
		t.Fatalf("expected an ok operation in %v", ops)
	}
}

func TestModuleInstance_NoEmissionSynthesizesError(t *testing.T) {
	impl := fakeModule{runFn: func(ctx context.Context, mi *ModuleInstance) error { return nil }}
	mi, h := newTestInstance(t, impl)

	mi.runOnce(context.Background(), func() int64 { return 0 })

	ops := h.Snapshot()
	found := false
	for _, op := range ops {
		if op.Type == OpError && op.Value == ErrNoEmission.Error() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected synthesized %q error operation, got %v", ErrNoEmission.Error(), ops)
	}
}

func TestModuleInstance_EmitOutsideRunningIsRejected(t *testing.T) {
	impl := fakeModule{}
	mi, _ := newTestInstance(t, impl)
	mi.now = func() int64 { return 0 }

	// Instance is CREATED, not RUNNING: Emit must refuse and record an
	// error operation rather than silently accept it.
	err := mi.Emit(OpOK, "text/plain", "too early")
	if !errors.Is(err, ErrEmitOutsideRun) {
		t.Fatalf("Emit outside RUNNING returned %v, want ErrEmitOutsideRun", err)
	}
}

func TestModuleInstance_RunErrorRecordsErrorOperation(t *testing.T) {
	wantErr := errors.New("boom")
	impl := fakeModule{runFn: func(ctx context.Context, mi *ModuleInstance) error { return wantErr }}
	mi, h := newTestInstance(t, impl)

	mi.runOnce(context.Background(), func() int64 { return 0 })

	ops := h.Snapshot()
	found := false
	for _, op := range ops {
		if op.Type == OpError && op.Value == wantErr.Error() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error operation carrying %q, got %v", wantErr.Error(), ops)
	}
	if mi.State() != StateCompleted {
		t.Fatalf("state after a failing Run = %s, want COMPLETED (errors don't abort sibling modules)", mi.State())
	}
}

func TestModuleInstance_PanicInRunIsRecovered(t *testing.T) {
	impl := fakeModule{runFn: func(ctx context.Context, mi *ModuleInstance) error {
		panic("unexpected")
	}}
	mi, h := newTestInstance(t, impl)

	mi.runOnce(context.Background(), func() int64 { return 0 })

	if mi.State() != StateCompleted {
		t.Fatalf("state after a panicking Run = %s, want COMPLETED", mi.State())
	}
	ops := h.Snapshot()
	found := false
	for _, op := range ops {
		if op.Type == OpError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a panic recovered as an error operation, got %v", ops)
	}
}

func TestModuleInstance_UnfinishedRunOnceModulesNilCounter(t *testing.T) {
	impl := fakeModule{}
	mi, _ := newTestInstance(t, impl)
	if got := mi.UnfinishedRunOnceModules(); got != 0 {
		t.Fatalf("UnfinishedRunOnceModules() with nil counter = %d, want 0", got)
	}
}
