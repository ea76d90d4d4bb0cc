package emit

import "github.com/fallout-harness/fallout/engine"

// NullSink discards every Operation. Useful when a host wants the engine's
// canonical History but no side broadcast. Grounded on
// graph/emit/null.go's NullEmitter.
type NullSink struct{}

// NewNullSink returns a NullSink.
func NewNullSink() NullSink { return NullSink{} }

// Append implements engine.Sink by doing nothing.
func (NullSink) Append(engine.Operation) {}
