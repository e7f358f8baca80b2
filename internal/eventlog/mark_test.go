package eventlog

import (
	"testing"
)

func TestMarkSaveLoad(t *testing.T) {
	l := newTestLog(t)
	if _, ok := l.LoadMark("orders", "c1"); ok {
		t.Fatalf("expected no mark initially")
	}
	if err := l.SaveMark("orders", "c1", 7); err != nil {
		t.Fatalf("save: %v", err)
	}
	seq, ok := l.LoadMark("orders", "c1")
	if !ok || seq != 7 {
		t.Fatalf("load: ok=%v seq=%d", ok, seq)
	}
}

func TestMarkNeverRegresses(t *testing.T) {
	l := newTestLog(t)
	if err := l.SaveMark("orders", "c1", 9); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := l.SaveMark("orders", "c1", 4); err != nil {
		t.Fatalf("save lower: %v", err)
	}
	seq, _ := l.LoadMark("orders", "c1")
	if seq != 9 {
		t.Fatalf("mark regressed to %d", seq)
	}
}

func TestMarksIsolatedPerClient(t *testing.T) {
	l := newTestLog(t)
	_ = l.SaveMark("orders", "c1", 3)
	if _, ok := l.LoadMark("orders", "c2"); ok {
		t.Fatalf("marks must be per client")
	}
}
