package checker

import (
	"fmt"
	"regexp"

	"github.com/fallout-harness/fallout/engine"
)

// Regex concatenates every Operation whose Value is a string, in history
// order, and matches the result against the `pattern` property; invalid iff
// the pattern does not match (§4.E).
type Regex struct{}

func (Regex) Check(ops []engine.Operation, props map[string]any) engine.Diagnostic {
	pattern, _ := props["pattern"].(string)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return engine.Diagnostic{Valid: false, Detail: fmt.Sprintf("invalid pattern %q: %v", pattern, err)}
	}

	var concatenated string
	for _, op := range ops {
		if s, ok := op.Value.(string); ok {
			concatenated += s
		}
	}

	if !re.MatchString(concatenated) {
		return engine.Diagnostic{
			Valid:  false,
			Detail: fmt.Sprintf("pattern %q did not match concatenated value %q", pattern, concatenated),
		}
	}
	return engine.Diagnostic{Valid: true, Detail: fmt.Sprintf("pattern %q matched %q", pattern, concatenated)}
}
