package module

import (
	"context"
	"testing"
	"time"

	"github.com/fallout-harness/fallout/engine"
)

func runOneModule(t *testing.T, shortName string, impl engine.Module, props map[string]any, lifetime engine.Lifetime) []engine.Operation {
	t.Helper()
	h := engine.NewHistory()
	inst := engine.NewModuleInstance("inst", shortName, impl, props, lifetime, engine.Automatic, h, engine.Ensemble{})
	wl := &engine.Workload{
		Phases:  []*engine.Phase{{Children: []engine.PhaseNode{{InstanceName: inst.Name, Instance: inst}}}},
		History: h,
	}
	runner := engine.NewRunner(engine.NewRegistry(), engine.Ensemble{})
	runner.Run(context.Background(), wl)
	return h.Snapshot()
}

func TestSleep0_EmitsOneOKAfterSleeping(t *testing.T) {
	start := time.Now()
	ops := runOneModule(t, "sleep0", Sleep0{}, map[string]any{"duration_ms": 20}, engine.RunOnce)
	elapsed := time.Since(start)

	if elapsed < 20*time.Millisecond {
		t.Fatalf("returned after %s, want at least 20ms", elapsed)
	}

	var okCount int
	for _, op := range ops {
		if op.Type == engine.OpOK {
			okCount++
		}
	}
	if okCount != 1 {
		t.Fatalf("expected exactly 1 ok operation, got %d: %v", okCount, ops)
	}
}

func TestPhaseLifetimeSleep_RepeatsUntilCounterZero(t *testing.T) {
	h := engine.NewHistory()

	sleep0Inst := engine.NewModuleInstance("sleep0-a", "sleep0", Sleep0{}, map[string]any{"duration_ms": 30}, engine.RunOnce, engine.Automatic, h, engine.Ensemble{})
	repeatInst := engine.NewModuleInstance("repeat-a", "phase_lifetime_sleep", PhaseLifetimeSleep{}, map[string]any{"duration_ms": 5}, engine.RunToEndOfPhase, engine.Automatic, h, engine.Ensemble{})

	phase := &engine.Phase{Children: []engine.PhaseNode{
		{InstanceName: sleep0Inst.Name, Instance: sleep0Inst},
		{InstanceName: repeatInst.Name, Instance: repeatInst},
	}}
	wl := &engine.Workload{Phases: []*engine.Phase{phase}, History: h}

	runner := engine.NewRunner(engine.NewRegistry(), engine.Ensemble{})
	runner.Run(context.Background(), wl)

	var repeatOK int
	for _, op := range h.Snapshot() {
		if op.Type == engine.OpOK && op.ProcessID == repeatInst.Name {
			repeatOK++
		}
	}
	if repeatOK < 3 || repeatOK > 10 {
		t.Fatalf("phase_lifetime_sleep produced %d ok operations for a 30ms/5ms ratio, want roughly 5-7 (tolerance 3-10)", repeatOK)
	}
}

func TestText_EmitsConfiguredValue(t *testing.T) {
	ops := runOneModule(t, "text1", Text{}, map[string]any{"value": "hello"}, engine.RunOnce)
	var got string
	for _, op := range ops {
		if op.Type == engine.OpOK {
			got, _ = op.Value.(string)
		}
	}
	if got != "hello" {
		t.Fatalf("emitted value = %q, want \"hello\"", got)
	}
}
