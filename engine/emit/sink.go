// Package emit provides pluggable History sinks: the "active set" members
// a History broadcasts every appended Operation to. Grounded on the
// teacher's graph/emit package (Emitter/Event), generalized from
// observability events to workload history records.
package emit

import (
	"sync"

	"github.com/fallout-harness/fallout/engine"
)

// MemorySink stores every appended Operation in memory, organized by
// process ID for later inspection — useful in tests and for a "side
// recorder" tee'd off the canonical History. Grounded on
// graph/emit/buffered.go's BufferedEmitter.
type MemorySink struct {
	mu  sync.RWMutex
	ops map[string][]engine.Operation
}

// NewMemorySink creates an empty, ready-to-use MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{ops: make(map[string][]engine.Operation)}
}

// Append implements engine.Sink.
func (m *MemorySink) Append(op engine.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op.ProcessID] = append(m.ops[op.ProcessID], op)
}

// ByProcess returns a copy of every operation recorded for the given
// process (module instance name).
func (m *MemorySink) ByProcess(processID string) []engine.Operation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.ops[processID]
	out := make([]engine.Operation, len(src))
	copy(out, src)
	return out
}
