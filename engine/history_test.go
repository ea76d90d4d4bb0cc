package engine

import (
	"sync"
	"testing"
)

type memSink struct {
	mu  sync.Mutex
	ops []Operation
}

func (s *memSink) Append(op Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
}

func (s *memSink) snapshot() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

func TestHistory_AppendOrderIsTotal(t *testing.T) {
	h := NewHistory()

	var wg sync.WaitGroup
	const emitters = 8
	const perEmitter = 50
	for i := 0; i < emitters; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perEmitter; j++ {
				h.Append(Operation{Type: OpInfo, ProcessID: "p", Value: id*perEmitter + j})
			}
		}(i)
	}
	wg.Wait()

	ops := h.Snapshot()
	if len(ops) != emitters*perEmitter {
		t.Fatalf("expected %d operations, got %d", emitters*perEmitter, len(ops))
	}
	if h.Len() != len(ops) {
		t.Fatalf("Len() = %d, want %d", h.Len(), len(ops))
	}

	// Every value appears exactly once, and each emitter's own appends keep
	// their program order within the single total order.
	seen := make(map[int]bool, len(ops))
	last := make([]int, emitters)
	for i := range last {
		last[i] = -1
	}
	for _, op := range ops {
		v := op.Value.(int)
		if seen[v] {
			t.Fatalf("value %d appears more than once", v)
		}
		seen[v] = true
		id, j := v/perEmitter, v%perEmitter
		if j <= last[id] {
			t.Fatalf("emitter %d: value %d recorded after %d", id, j, last[id])
		}
		last[id] = j
	}
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := NewHistory()
	h.Append(Operation{Type: OpOK, Value: "a"})

	snap := h.Snapshot()
	snap[0].Value = "mutated"

	again := h.Snapshot()
	if again[0].Value != "a" {
		t.Fatalf("mutating a snapshot affected the History's own log: got %v", again[0].Value)
	}
}

func TestHistory_BroadcastsToSinks(t *testing.T) {
	h := NewHistory()
	s1 := &memSink{}
	h.AddSink(s1)

	h.Append(Operation{Type: OpInvoke, ProcessID: "a"})

	s2 := &memSink{}
	h.AddSink(s2)
	h.Append(Operation{Type: OpEnd, ProcessID: "a"})

	if len(s1.snapshot()) != 2 {
		t.Fatalf("sink registered before both appends saw %d operations, want 2", len(s1.snapshot()))
	}
	if len(s2.snapshot()) != 1 {
		t.Fatalf("sink registered mid-run saw %d operations, want 1 (only appends after it joined)", len(s2.snapshot()))
	}
}
