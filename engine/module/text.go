package module

import (
	"context"

	"github.com/fallout-harness/fallout/engine"
)

// textValueProp carries the literal string a Text module emits.
var textValueProp = engine.PropertySpec{Name: "value", Required: true}

// Text is a RUN_ONCE module that emits its configured `value` property as a
// single `ok` Operation. Registered under two short names, text1 and text2,
// so a workload can compose them around a nested sub-phase and assert the
// concatenation of their emitted values (scenario S3).
type Text struct{ engine.BaseModule }

func (Text) PropertySpecs() []engine.PropertySpec { return []engine.PropertySpec{textValueProp} }
func (Text) Lifetime() (engine.Lifetime, bool)    { return engine.RunOnce, true }

func (Text) Run(ctx context.Context, mi *engine.ModuleInstance, ens engine.Ensemble, props map[string]any) error {
	v, _ := props["value"].(string)
	return mi.Emit(engine.OpOK, "text/plain", v)
}
