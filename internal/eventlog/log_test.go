package eventlog

import (
	"context"
	"testing"
	"time"

	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"
)

func newTestDB(t *testing.T) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := OpenLog(newTestDB(t), "ns", Options{})
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func record(tsMs int64, channel, from, typ, data string) AppendRecord {
	return AppendRecord{
		Header:  EncodeEnvelope(Envelope{TsMs: tsMs, Channel: channel, From: from, Type: typ}),
		Payload: []byte(data),
	}
}

func mustAppend(t *testing.T, l *Log, recs ...AppendRecord) []uint64 {
	t.Helper()
	seqs, err := l.Append(context.Background(), recs)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return seqs
}

func TestAppendAssignsSequential(t *testing.T) {
	l := newTestLog(t)
	seqs := mustAppend(t, l,
		record(1, "orders", "a", "created", `{"id":1}`),
		record(2, "orders", "a", "created", `{"id":2}`),
	)
	if len(seqs) != 2 {
		t.Fatalf("want 2 seqs, got %d", len(seqs))
	}
	if seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("expected positions starting at 1: %v", seqs)
	}
}

func TestAppendDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	l, err := OpenLog(db, "ns", Options{})
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	seqs := mustAppend(t, l, record(1, "c", "a", "x", "p"))
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// reopen and ensure lastSeq is restored via meta
	db2, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen pebble: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })
	l2, err := OpenLog(db2, "ns", Options{})
	if err != nil {
		t.Fatalf("open log2: %v", err)
	}
	seqs2 := mustAppend(t, l2, record(2, "c", "a", "x", "q"))
	if !(seqs[0] < seqs2[0]) {
		t.Fatalf("expected next seq > previous: prev=%d next=%d", seqs[0], seqs2[0])
	}
}

func TestMostRecent(t *testing.T) {
	l := newTestLog(t)
	if _, ok, err := l.MostRecent(); ok || err != nil {
		t.Fatalf("empty log: ok=%v err=%v", ok, err)
	}
	mustAppend(t, l, record(1, "c", "a", "x", "p"), record(2, "c", "a", "y", "q"))
	it, ok, err := l.MostRecent()
	if err != nil || !ok {
		t.Fatalf("most recent: ok=%v err=%v", ok, err)
	}
	if it.Seq != 2 || string(it.Payload) != "q" {
		t.Fatalf("unexpected most recent: %+v", it)
	}
}

func TestWaitForAppendWake(t *testing.T) {
	l := newTestLog(t)
	done := make(chan struct{})
	go func() {
		if !l.WaitForAppend(500*time.Millisecond, nil) {
			t.Errorf("expected wake by append")
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	mustAppend(t, l, record(1, "c", "a", "x", "p"))

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for waiter to wake")
	}
}

func TestWaitForAppendTimeout(t *testing.T) {
	l := newTestLog(t)
	if l.WaitForAppend(50*time.Millisecond, nil) {
		t.Fatalf("expected timeout")
	}
}
