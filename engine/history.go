package engine

import "sync"

// Sink receives a copy of every Operation appended to a History, in append
// order. Implementations live in engine/emit (memory, log, null, otel) and
// must not block the writer for long — this mirrors the teacher's
// Emitter contract in graph/emit/emitter.go, generalized from "event" to
// "Operation".
type Sink interface {
	Append(op Operation)
}

// History is an append-only, ordered sequence of Operations for a single
// test run. Append is serialized behind a single mutex so the emission
// order across every concurrent emitter becomes the authoritative total
// order (§3, §4.A, §5) — checkers never see wall-clock reordering.
//
// The "active-histories set" from §4.A is modeled as the list of Sinks a
// History broadcasts to in addition to its own canonical, queryable log.
type History struct {
	mu    sync.Mutex
	ops   []Operation
	sinks []Sink
}

// NewHistory creates an empty History broadcasting to the given sinks.
func NewHistory(sinks ...Sink) *History {
	return &History{sinks: sinks}
}

// AddSink registers an additional broadcast target. Safe to call before or
// during a run; operations appended after registration are the only ones
// the new sink observes (matching a side recorder attached mid-run).
func (h *History) AddSink(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, s)
}

// Append records op as the next entry and broadcasts it to every active
// sink. This is the only synchronized operation modules are guaranteed
// (§5) — it is what gives the history its total order.
func (h *History) Append(op Operation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op)

	for _, s := range h.sinks {
		s.Append(op)
	}
}

// Snapshot returns the history's current contents, in append order. The
// returned slice is a copy; mutating it does not affect the History.
func (h *History) Snapshot() []Operation {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Operation, len(h.ops))
	copy(out, h.ops)
	return out
}

// Len reports the number of operations recorded so far.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ops)
}
