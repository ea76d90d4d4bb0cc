package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fallout-harness/fallout/engine"
)

func TestLogSink_TextMode(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(&buf, false)
	s.Append(engine.Operation{Type: engine.OpOK, ProcessID: "m1", ModuleRef: "sleep0", Value: "done"})

	line := buf.String()
	if !strings.Contains(line, "process=m1") || !strings.Contains(line, "module=sleep0") {
		t.Fatalf("log line missing expected fields: %q", line)
	}
}

func TestLogSink_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(&buf, true)
	s.Append(engine.Operation{Type: engine.OpFail, ProcessID: "m1"})

	var decoded engine.Operation
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if decoded.Type != engine.OpFail || decoded.ProcessID != "m1" {
		t.Fatalf("decoded operation = %+v, want Type=fail ProcessID=m1", decoded)
	}
}

func TestNullSink_DiscardsEverything(t *testing.T) {
	s := NewNullSink()
	s.Append(engine.Operation{Type: engine.OpOK}) // must not panic
}

func TestMemorySink_GroupsByProcess(t *testing.T) {
	m := NewMemorySink()
	m.Append(engine.Operation{Type: engine.OpOK, ProcessID: "a", Value: 1})
	m.Append(engine.Operation{Type: engine.OpOK, ProcessID: "b", Value: 2})
	m.Append(engine.Operation{Type: engine.OpEnd, ProcessID: "a", Value: 3})

	aOps := m.ByProcess("a")
	if len(aOps) != 2 {
		t.Fatalf("process a has %d operations, want 2", len(aOps))
	}
	bOps := m.ByProcess("b")
	if len(bOps) != 1 {
		t.Fatalf("process b has %d operations, want 1", len(bOps))
	}

	aOps[0].Value = "mutated"
	if got := m.ByProcess("a")[0].Value; got == "mutated" {
		t.Fatalf("ByProcess returned a slice aliasing internal storage")
	}
}
