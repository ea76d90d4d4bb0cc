package engine

import "sync/atomic"

// AbortFlag is the cooperative cancellation signal consulted by every
// long-running module (§4.G). Grounded on the atomic-counter style of the
// teacher's graph/scheduler.go Frontier metrics, narrowed to a single
// atomic.Bool since the flag carries no value beyond "requested".
type AbortFlag struct {
	set atomic.Bool
}

// Set requests abort. Idempotent: calling it more than once has no
// additional effect.
func (a *AbortFlag) Set() { a.set.Store(true) }

// IsSet reports whether abort has been requested.
func (a *AbortFlag) IsSet() bool { return a.set.Load() }

// Check returns a closure suitable for ModuleInstance.SetAbortedCheck.
func (a *AbortFlag) Check() func() bool { return a.IsSet }
