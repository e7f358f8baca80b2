package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(buf)))
	return l, buf
}

func TestLevelGating(t *testing.T) {
	l, buf := newBufferLogger(WarnLevel, &TextFormatter{DisableTimestamp: true})
	l.Info("hidden")
	l.Warn("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be gated at warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn should be emitted: %q", out)
	}
}

func TestJSONFormatterFields(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	l.Info("hello", Str("channel", "orders"), Int("n", 3))
	var obj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if obj["msg"] != "hello" || obj["channel"] != "orders" {
		t.Fatalf("unexpected entry: %v", obj)
	}
	if obj["level"] != "INFO" {
		t.Fatalf("unexpected level: %v", obj["level"])
	}
}

func TestWithAttachesFields(t *testing.T) {
	l, buf := newBufferLogger(DebugLevel, &TextFormatter{DisableTimestamp: true})
	child := l.WithComponent("bus").With(Str("client", "c1"))
	child.Debug("joined")
	out := buf.String()
	if !strings.Contains(out, "component=bus") || !strings.Contains(out, "client=c1") {
		t.Fatalf("expected attached fields in %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("debug"); err != nil || lvl != DebugLevel {
		t.Fatalf("debug parse: %v %v", lvl, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if lvl, err := ParseLevel(""); err != nil || lvl != InfoLevel {
		t.Fatalf("empty should default to info: %v %v", lvl, err)
	}
}
