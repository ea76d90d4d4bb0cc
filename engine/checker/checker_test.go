package checker

import (
	"context"
	"testing"

	"github.com/fallout-harness/fallout/engine"
)

func TestNoFail(t *testing.T) {
	cases := []struct {
		name  string
		ops   []engine.Operation
		valid bool
	}{
		{"empty history", nil, true},
		{"only ok operations", []engine.Operation{
			{Type: engine.OpInvoke}, {Type: engine.OpOK}, {Type: engine.OpEnd},
		}, true},
		{"one fail operation", []engine.Operation{
			{Type: engine.OpOK}, {Type: engine.OpFail, ProcessID: "m1", Value: "boom"},
		}, false},
		{"one error operation", []engine.Operation{
			{Type: engine.OpError, ProcessID: "m1", Value: "no ops emitted"},
		}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := NoFail{}.Check(c.ops, nil)
			if d.Valid != c.valid {
				t.Fatalf("Valid = %v, want %v (detail: %s)", d.Valid, c.valid, d.Detail)
			}
		})
	}
}

func TestRegex(t *testing.T) {
	ops := []engine.Operation{
		{Type: engine.OpOK, Value: "hello "},
		{Type: engine.OpInfo, Value: 42}, // non-string values are skipped
		{Type: engine.OpOK, Value: "world"},
	}

	d := Regex{}.Check(ops, map[string]any{"pattern": "^hello world$"})
	if !d.Valid {
		t.Fatalf("expected match, got invalid: %s", d.Detail)
	}

	d = Regex{}.Check(ops, map[string]any{"pattern": "^goodbye$"})
	if d.Valid {
		t.Fatalf("expected no match, got valid")
	}

	d = Regex{}.Check(ops, map[string]any{"pattern": "("})
	if d.Valid {
		t.Fatalf("expected an invalid-pattern diagnostic, got valid")
	}
}

func TestCount(t *testing.T) {
	ops := []engine.Operation{
		{Type: engine.OpOK, ProcessID: "a"},
		{Type: engine.OpOK, ProcessID: "b"},
		{Type: engine.OpOK, ProcessID: "a"},
		{Type: engine.OpError, ProcessID: "a"},
	}

	// Count every ok operation, regardless of process.
	d := Count{}.Check(ops, map[string]any{"types": []string{"ok"}, "min": 3, "max": 3})
	if !d.Valid {
		t.Fatalf("expected 3 ok operations to satisfy [3,3], got invalid: %s", d.Detail)
	}

	// Narrow to process "a": 2 ok operations.
	d = Count{}.Check(ops, map[string]any{
		"processes": []string{"a"}, "types": []string{"ok"}, "min": 2, "max": 2,
	})
	if !d.Valid {
		t.Fatalf("expected 2 ok operations from process a, got invalid: %s", d.Detail)
	}

	// Out of bounds.
	d = Count{}.Check(ops, map[string]any{"types": []string{"ok"}, "min": 5, "max": 5})
	if d.Valid {
		t.Fatalf("expected count outside [5,5] to be invalid")
	}
}

func TestCheckerPipeline_NoShortCircuit(t *testing.T) {
	ops := []engine.Operation{{Type: engine.OpFail, ProcessID: "m1"}}

	pipeline := engine.CheckerPipeline{
		Checkers: []engine.CheckerBinding{
			{Name: "nofail", Checker: NoFail{}},
			{Name: "regex", Checker: Regex{}, Props: map[string]any{"pattern": "never matches anything"}},
		},
	}

	diags := pipeline.Evaluate(context.Background(), ops)
	if len(diags) != 2 {
		t.Fatalf("expected both checkers to run despite the first being invalid, got %d diagnostics", len(diags))
	}
	for _, d := range diags {
		if d.Valid {
			t.Fatalf("checker %s unexpectedly valid", d.Checker)
		}
	}
}
