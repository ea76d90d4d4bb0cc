package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// recordingModule appends its own name to a shared, mutex-protected log
// every time it runs, letting tests assert cross-phase ordering.
type recordingModule struct {
	BaseModule
	log  *[]string
	mu   *sync.Mutex
	name string
}

func (m recordingModule) Run(ctx context.Context, mi *ModuleInstance, ens Ensemble, props map[string]any) error {
	m.mu.Lock()
	*m.log = append(*m.log, m.name)
	m.mu.Unlock()
	return mi.Emit(OpOK, "text/plain", m.name)
}

func TestRunner_PhasesRunStrictlySequentially(t *testing.T) {
	var log []string
	var mu sync.Mutex

	h := NewHistory()
	mkPhase := func(n int) *Phase {
		var children []PhaseNode
		for i := 0; i < 5; i++ {
			name := fmt.Sprintf("phase%d-mod%d", n, i)
			impl := recordingModule{log: &log, mu: &mu, name: name}
			inst := NewModuleInstance(name, "recording", impl, nil, RunOnce, Automatic, h, Ensemble{})
			children = append(children, PhaseNode{InstanceName: name, Instance: inst})
		}
		return &Phase{Children: children}
	}

	wl := &Workload{
		Phases:  []*Phase{mkPhase(1), mkPhase(2), mkPhase(3)},
		History: h,
	}

	registry := NewRegistry()
	runner := NewRunner(registry, Ensemble{})
	verdict := runner.Run(context.Background(), wl)

	if !verdict.Pass {
		t.Fatalf("verdict.Pass = false, want true (no checkers configured)")
	}
	if len(log) != 15 {
		t.Fatalf("expected 15 module runs, got %d: %v", len(log), log)
	}

	// Every phase-1 module must precede every phase-2 module, which must
	// precede every phase-3 module (Testable Property 5).
	lastPhase := 0
	for _, name := range log {
		var phase int
		fmt.Sscanf(name, "phase%d-", &phase)
		if phase < lastPhase {
			t.Fatalf("module %q from phase %d ran after a phase %d module: %v", name, phase, lastPhase, log)
		}
		lastPhase = phase
	}
}

func TestRunner_GlobalSetupFailureSkipsAllPhases(t *testing.T) {
	h := NewHistory()

	failing := failingGlobalSetupModule{}
	failingInst := NewModuleInstance("setup-fail", "failing", failing, nil, RunOnce, Automatic, h, Ensemble{})

	other := recordingModule{log: &[]string{}, mu: &sync.Mutex{}, name: "never"}
	otherInst := NewModuleInstance("other", "recording", other, nil, RunOnce, Automatic, h, Ensemble{})

	wl := &Workload{
		Phases: []*Phase{
			{Children: []PhaseNode{{InstanceName: failingInst.Name, Instance: failingInst}}},
			{Children: []PhaseNode{{InstanceName: otherInst.Name, Instance: otherInst}}},
		},
		History: h,
		Checkers: map[string]CheckerBinding{
			"nofail": {Name: "nofail", Checker: testNoFailChecker{}},
		},
	}

	registry := NewRegistry()
	runner := NewRunner(registry, Ensemble{})
	verdict := runner.Run(context.Background(), wl)

	if verdict.Pass {
		t.Fatalf("verdict.Pass = true, want false (global setup failed)")
	}
	if otherInst.State() != StateCreated {
		t.Fatalf("second phase's module state = %s, want CREATED (never launched)", otherInst.State())
	}
}

// testNoFailChecker is a minimal in-package stand-in for the built-in
// nofail checker (engine/checker), which this test cannot import without
// creating an import cycle.
type testNoFailChecker struct{}

func (testNoFailChecker) Check(ops []Operation, props map[string]any) Diagnostic {
	for _, op := range ops {
		if op.Type == OpError || op.Type == OpFail {
			return Diagnostic{Valid: false, Detail: "found a fail/error operation"}
		}
	}
	return Diagnostic{Valid: true}
}

type failingGlobalSetupModule struct{ BaseModule }

func (failingGlobalSetupModule) UseGlobalSetupTeardown() bool { return true }
func (failingGlobalSetupModule) Setup(ctx context.Context, ens Ensemble, props map[string]any) error {
	return fmt.Errorf("setup always fails")
}
func (failingGlobalSetupModule) Run(ctx context.Context, mi *ModuleInstance, ens Ensemble, props map[string]any) error {
	return mi.Emit(OpOK, "text/plain", "should not run")
}
