package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fallout-harness/fallout/engine"
)

// LogSink writes each Operation as a structured log line, in text or JSON
// form. Grounded on graph/emit/log.go's LogEmitter.
type LogSink struct {
	w        io.Writer
	jsonMode bool
}

// NewLogSink creates a LogSink writing to w (os.Stdout if w is nil).
func NewLogSink(w io.Writer, jsonMode bool) *LogSink {
	if w == nil {
		w = os.Stdout
	}
	return &LogSink{w: w, jsonMode: jsonMode}
}

// Append implements engine.Sink.
func (s *LogSink) Append(op engine.Operation) {
	if s.jsonMode {
		b, err := json.Marshal(op)
		if err != nil {
			fmt.Fprintf(s.w, `{"error":"marshal failed: %s"}`+"\n", err)
			return
		}
		s.w.Write(append(b, '\n'))
		return
	}
	fmt.Fprintf(s.w, "[%s] t=%dns process=%s module=%s value=%v\n",
		op.Type, op.TimeNS, op.ProcessID, op.ModuleRef, op.Value)
}
