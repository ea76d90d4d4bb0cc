// Package module collects the built-in Module implementations registered
// by default: sleep/text probes used by the testable-property scenarios,
// plus the chat and database probes in chatprobe.go and dbwriter.go.
package module

import (
	"context"
	"fmt"
	"time"

	"github.com/fallout-harness/fallout/engine"
)

// durationMSProp is shared by every sleep-family module: the number of
// milliseconds to sleep per invocation.
var durationMSProp = engine.PropertySpec{Name: "duration_ms", Required: true}

// Sleep0 is a RUN_ONCE module that sleeps for duration_ms then emits one
// `ok` Operation (scenario S2, S3).
type Sleep0 struct{ engine.BaseModule }

func (Sleep0) PropertySpecs() []engine.PropertySpec { return []engine.PropertySpec{durationMSProp} }
func (Sleep0) Lifetime() (engine.Lifetime, bool)    { return engine.RunOnce, true }

func (Sleep0) Run(ctx context.Context, mi *engine.ModuleInstance, ens engine.Ensemble, props map[string]any) error {
	d := sleepDuration(props)
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return ctx.Err()
	}
	return mi.Emit(engine.OpOK, "text/plain", fmt.Sprintf("slept %s", d))
}

// PhaseLifetimeSleep is a RUN_TO_END_OF_PHASE, AUTOMATIC module that sleeps
// for duration_ms and emits one `ok` Operation per invocation, repeating
// until the scheduler observes every RUN_ONCE sibling has completed
// (scenario S2).
type PhaseLifetimeSleep struct{ engine.BaseModule }

func (PhaseLifetimeSleep) PropertySpecs() []engine.PropertySpec {
	return []engine.PropertySpec{durationMSProp}
}
func (PhaseLifetimeSleep) Lifetime() (engine.Lifetime, bool)     { return engine.RunToEndOfPhase, true }
func (PhaseLifetimeSleep) RunToEndMethod() engine.RunToEndMethod { return engine.Automatic }

func (PhaseLifetimeSleep) Run(ctx context.Context, mi *engine.ModuleInstance, ens engine.Ensemble, props map[string]any) error {
	d := sleepDuration(props)
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return ctx.Err()
	}
	return mi.Emit(engine.OpOK, "text/plain", fmt.Sprintf("slept %s", d))
}

// PhaseLifetimeSleepInSubphase is identical to PhaseLifetimeSleep but
// registered under its own short name since scenario S3 nests it inside a
// sub-phase and expects its own distinct instance_count bound (1-3 `ok`
// operations against a 25ms RUN_ONCE sibling at 10ms per sleep).
type PhaseLifetimeSleepInSubphase struct{ PhaseLifetimeSleep }

func sleepDuration(props map[string]any) time.Duration {
	switch v := props["duration_ms"].(type) {
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	default:
		return 0
	}
}
