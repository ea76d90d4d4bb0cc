// Package checker collects the built-in Checker and ArtifactChecker
// implementations registered by default.
package checker

import (
	"fmt"

	"github.com/fallout-harness/fallout/engine"
)

// NoFail is invalid iff the history contains any `fail` or `error`
// Operation (§4.E).
type NoFail struct{}

func (NoFail) Check(ops []engine.Operation, props map[string]any) engine.Diagnostic {
	for _, op := range ops {
		if op.Type == engine.OpFail || op.Type == engine.OpError {
			return engine.Diagnostic{
				Valid:  false,
				Detail: fmt.Sprintf("found %s operation from %s: %v", op.Type, op.ProcessID, op.Value),
			}
		}
	}
	return engine.Diagnostic{Valid: true, Detail: "no fail/error operations"}
}
