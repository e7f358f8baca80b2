package id

import (
	"math"
	"sync/atomic"
	"testing"
	"time"
)

func stubClock(t *testing.T, f func() int64) {
	t.Helper()
	prev := nowMs
	nowMs = f
	t.Cleanup(func() { nowMs = prev })
}

func TestHexFormSortsChronologically(t *testing.T) {
	var ms atomic.Int64
	ms.Store(5_000)
	stubClock(t, ms.Load)

	g := NewGenerator()
	prev := g.Next().String()
	for i := 0; i < 100; i++ {
		if i%10 == 0 {
			ms.Add(1)
		}
		cur := g.Next().String()
		if len(cur) != 32 {
			t.Fatalf("expected 32 hex chars, got %q", cur)
		}
		if prev >= cur {
			t.Fatalf("ids not increasing: %q then %q", prev, cur)
		}
		prev = cur
	}
}

func TestTimeEmbedsIssueMillisecond(t *testing.T) {
	var ms atomic.Int64
	ms.Store(1_700_000_000_123)
	stubClock(t, ms.Load)

	got := NewGenerator().Next().Time().UnixMilli()
	if got != 1_700_000_000_123 {
		t.Fatalf("embedded time = %d", got)
	}
}

func TestBackwardsClockNeverRegresses(t *testing.T) {
	var ms atomic.Int64
	ms.Store(2_000)
	stubClock(t, ms.Load)

	g := NewGenerator()
	a := g.Next()
	ms.Store(1_500)
	b := g.Next()
	if a.String() >= b.String() {
		t.Fatalf("id regressed with the clock: %q then %q", a, b)
	}
	if b.Time().UnixMilli() != 2_000 {
		t.Fatalf("expected pin to last issued millisecond, got %d", b.Time().UnixMilli())
	}
}

func TestSequenceOverflowWaitsForClock(t *testing.T) {
	var ms atomic.Int64
	ms.Store(3_000)
	stubClock(t, ms.Load)

	g := NewGenerator()
	g.lastMs = 3_000
	g.seq = math.MaxUint64

	done := make(chan ID, 1)
	go func() { done <- g.Next() }()
	time.AfterFunc(10*time.Millisecond, func() { ms.Store(3_001) })

	select {
	case got := <-done:
		if got.Time().UnixMilli() != 3_001 {
			t.Fatalf("expected id from the advanced millisecond, got %d", got.Time().UnixMilli())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Next did not recover from sequence overflow")
	}
}
