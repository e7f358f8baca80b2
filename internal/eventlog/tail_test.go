package eventlog

import (
	"errors"
	"testing"
	"time"
)

func TestTailDeliversMatchingInOrder(t *testing.T) {
	l := newTestLog(t)
	mustAppend(t, l,
		record(1, "orders", "alice", "created", "p1"),
		record(2, "billing", "alice", "charged", "p2"),
		record(3, "orders", "bob", "created", "p3"),
	)
	tail := l.Tail(Filter{Channel: "orders"})
	defer tail.Close()

	it, ok, err := tail.Next(100 * time.Millisecond)
	if err != nil || !ok || it.Seq != 1 {
		t.Fatalf("first: ok=%v err=%v it=%+v", ok, err, it)
	}
	it, ok, err = tail.Next(100 * time.Millisecond)
	if err != nil || !ok || it.Seq != 3 {
		t.Fatalf("second should skip other channel: ok=%v err=%v it=%+v", ok, err, it)
	}
}

func TestTailExcludesSender(t *testing.T) {
	l := newTestLog(t)
	mustAppend(t, l,
		record(1, "orders", "me", "created", "own"),
		record(2, "orders", "other", "created", "theirs"),
	)
	tail := l.Tail(Filter{Channel: "orders", ExcludeFrom: "me"})
	defer tail.Close()

	it, ok, err := tail.Next(100 * time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("next: ok=%v err=%v", ok, err)
	}
	if string(it.Payload) != "theirs" {
		t.Fatalf("own record leaked back: %+v", it)
	}
}

func TestTailAfterSeq(t *testing.T) {
	l := newTestLog(t)
	mustAppend(t, l,
		record(1, "c", "a", "x", "p1"),
		record(2, "c", "a", "x", "p2"),
	)
	tail := l.Tail(Filter{AfterSeq: 1, Channel: "c"})
	defer tail.Close()

	it, ok, err := tail.Next(100 * time.Millisecond)
	if err != nil || !ok || it.Seq != 2 {
		t.Fatalf("expected only positions > 1: ok=%v err=%v it=%+v", ok, err, it)
	}
}

func TestTailBenignTimeout(t *testing.T) {
	l := newTestLog(t)
	tail := l.Tail(Filter{Channel: "c"})
	defer tail.Close()

	_, ok, err := tail.Next(50 * time.Millisecond)
	if ok || err != nil {
		t.Fatalf("expected benign timeout: ok=%v err=%v", ok, err)
	}
	// the handle stays usable after a timeout
	mustAppend(t, l, record(1, "c", "a", "x", "p"))
	it, ok, err := tail.Next(500 * time.Millisecond)
	if err != nil || !ok || it.Seq != 1 {
		t.Fatalf("expected delivery after timeout: ok=%v err=%v it=%+v", ok, err, it)
	}
}

func TestTailWokenByAppend(t *testing.T) {
	l := newTestLog(t)
	tail := l.Tail(Filter{Channel: "c"})
	defer tail.Close()

	got := make(chan Item, 1)
	go func() {
		it, ok, err := tail.Next(2 * time.Second)
		if err == nil && ok {
			got <- it
		}
	}()
	time.Sleep(50 * time.Millisecond)
	mustAppend(t, l, record(1, "c", "a", "x", "p"))

	select {
	case it := <-got:
		if it.Seq != 1 {
			t.Fatalf("unexpected item: %+v", it)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("tail was not woken by append")
	}
}

func TestTailSkipsSentinel(t *testing.T) {
	l := newTestLog(t)
	mustAppend(t, l, AppendRecord{Header: EncodeEnvelope(Envelope{TsMs: 1})})
	mustAppend(t, l, record(2, "c", "a", "x", "p"))

	tail := l.Tail(Filter{Channel: "c"})
	defer tail.Close()
	it, ok, err := tail.Next(100 * time.Millisecond)
	if err != nil || !ok || it.Seq != 2 {
		t.Fatalf("sentinel must not be delivered: ok=%v err=%v it=%+v", ok, err, it)
	}
}

func TestTailCloseWakesBlockedNext(t *testing.T) {
	l := newTestLog(t)
	tail := l.Tail(Filter{Channel: "c"})

	errC := make(chan error, 1)
	go func() {
		_, _, err := tail.Next(10 * time.Second)
		errC <- err
	}()
	time.Sleep(50 * time.Millisecond)
	tail.Close()

	select {
	case err := <-errC:
		if !errors.Is(err, ErrTailClosed) {
			t.Fatalf("want ErrTailClosed, got %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("close did not wake Next")
	}
}

func TestTailNextAfterCloseReturnsClosed(t *testing.T) {
	l := newTestLog(t)
	tail := l.Tail(Filter{Channel: "c"})
	tail.Close()
	if _, _, err := tail.Next(10 * time.Millisecond); !errors.Is(err, ErrTailClosed) {
		t.Fatalf("want ErrTailClosed, got %v", err)
	}
}
