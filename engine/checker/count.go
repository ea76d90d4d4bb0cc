package checker

import (
	"fmt"

	"github.com/fallout-harness/fallout/engine"
)

// Count counts Operations whose ProcessID is in the `processes` property
// and whose Type is in the `types` property, then asserts
// min ≤ count ≤ max (§4.E). Empty `processes` matches every process; empty
// `types` matches every type.
type Count struct{}

func (Count) Check(ops []engine.Operation, props map[string]any) engine.Diagnostic {
	processes := stringSet(props["processes"])
	types := stringSet(props["types"])
	min := intProp(props["min"], 0)
	max := intProp(props["max"], int(^uint(0)>>1))

	count := 0
	for _, op := range ops {
		if len(processes) > 0 && !processes[op.ProcessID] {
			continue
		}
		if len(types) > 0 && !types[string(op.Type)] {
			continue
		}
		count++
	}

	if count < min || count > max {
		return engine.Diagnostic{
			Valid:  false,
			Detail: fmt.Sprintf("count %d outside [%d, %d]", count, min, max),
		}
	}
	return engine.Diagnostic{Valid: true, Detail: fmt.Sprintf("count %d within [%d, %d]", count, min, max)}
}

func stringSet(v any) map[string]bool {
	out := map[string]bool{}
	switch vs := v.(type) {
	case []string:
		for _, s := range vs {
			out[s] = true
		}
	case []any:
		for _, s := range vs {
			if str, ok := s.(string); ok {
				out[str] = true
			}
		}
	}
	return out
}

func intProp(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}
