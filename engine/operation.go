// Package engine implements the Fallout workload execution engine: the
// phased, hierarchically-nested module scheduler that drives a workload's
// concurrent modules, multiplexes their emitted operations into a
// totally-ordered history, and feeds that history to checkers.
package engine

import "fmt"

// OpType identifies the kind of an Operation.
type OpType string

// Recognized Operation types.
const (
	OpInvoke OpType = "invoke"
	OpOK     OpType = "ok"
	OpFail   OpType = "fail"
	OpInfo   OpType = "info"
	OpError  OpType = "error"
	OpEnd    OpType = "end"
)

// Operation is an immutable record in a History. Operations are created
// only by modules (via ModuleInstance.Emit) and by the engine itself for
// lifecycle markers (invoke/end) and synthetic errors.
type Operation struct {
	Type      OpType
	TimeNS    int64
	MediaType string
	Value     any
	ProcessID string // module instance name
	ModuleRef string // registered module short name
}

// String renders the operation for logs and diagnostics.
func (o Operation) String() string {
	return fmt.Sprintf("%s@%dns[%s/%s]=%v", o.Type, o.TimeNS, o.ProcessID, o.ModuleRef, o.Value)
}
