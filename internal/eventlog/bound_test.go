package eventlog

import (
	"strings"
	"testing"
)

func newBoundedLog(t *testing.T, maxBytes int64) *Log {
	t.Helper()
	l, err := OpenLog(newTestDB(t), "ns", Options{MaxSizeBytes: maxBytes})
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func TestBoundTrimsOldest(t *testing.T) {
	l := newBoundedLog(t, 512)
	payload := strings.Repeat("x", 100)
	for i := 0; i < 10; i++ {
		mustAppend(t, l, record(int64(i), "c", "a", "t", payload))
	}
	items, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) == 0 || len(items) == 10 {
		t.Fatalf("expected some but not all entries retained, got %d", len(items))
	}
	// the oldest entries are gone, the newest survives
	if items[0].Seq == 1 {
		t.Fatalf("oldest entry should have been trimmed")
	}
	if items[len(items)-1].Seq != 10 {
		t.Fatalf("newest entry must survive, got %d", items[len(items)-1].Seq)
	}
}

func TestBoundKeepsNewestEvenWhenOversized(t *testing.T) {
	l := newBoundedLog(t, 16)
	mustAppend(t, l, record(1, "c", "a", "t", strings.Repeat("y", 256)))
	items, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("single oversized entry must be retained: %d", len(items))
	}
}

func TestLaggingReaderSeesGapNotError(t *testing.T) {
	l := newBoundedLog(t, 512)
	seqs := mustAppend(t, l, record(0, "c", "a", "t", "first"))
	tailStart := seqs[0]

	payload := strings.Repeat("z", 100)
	for i := 0; i < 10; i++ {
		mustAppend(t, l, record(int64(i), "c", "a", "t", payload))
	}

	items, err := l.Read(ReadOptions{Start: tailStart + 1})
	if err != nil {
		t.Fatalf("read after overwrite: %v", err)
	}
	if len(items) == 0 {
		t.Fatalf("expected surviving entries")
	}
	if items[0].Seq <= tailStart+1 {
		t.Fatalf("expected a position gap after retention trim, got %d", items[0].Seq)
	}
}
