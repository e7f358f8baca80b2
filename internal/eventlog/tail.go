package eventlog

import (
	"errors"
	"sync"
	"time"
)

// ErrTailClosed is reported by Next once the handle has been released.
var ErrTailClosed = errors.New("eventlog: tail closed")

// tailScanBatch bounds how many entries a single Next pass reads at once.
const tailScanBatch = 128

// Filter selects the records a tail delivers.
type Filter struct {
	// AfterSeq delivers only records with position > AfterSeq.
	AfterSeq uint64
	// Channel restricts delivery to one channel when non-empty.
	Channel string
	// ExcludeFrom drops records published by this sender (self-exclusion).
	ExcludeFrom string
}

func (f Filter) match(env Envelope) bool {
	if f.Channel != "" && env.Channel != f.Channel {
		return false
	}
	if f.ExcludeFrom != "" && env.From == f.ExcludeFrom {
		return false
	}
	return true
}

// Tail is a live read handle over the log. At most one Next call may be
// outstanding per handle; the bus engine guarantees this per subscription.
type Tail struct {
	log    *Log
	filter Filter
	pos    uint64

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Tail opens a stream handle delivering records matching f in position order.
func (l *Log) Tail(f Filter) *Tail {
	return &Tail{log: l, filter: f, pos: f.AfterSeq, done: make(chan struct{})}
}

// Close releases the handle and wakes any blocked Next call. Safe to call
// concurrently with Next and more than once.
func (t *Tail) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.done)
}

func (t *Tail) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Next returns the next matching record. Outcomes:
//   - (item, true, nil): a record was delivered; the handle advanced past it.
//   - (_, false, nil): no matching record within interval (benign timeout).
//   - (_, false, ErrTailClosed): the handle was released.
//   - (_, false, err): a storage fault; the handle should be abandoned.
//
// Records skipped by the filter advance the handle's internal position but
// are never delivered; a reopened tail re-evaluates them from its start
// position.
func (t *Tail) Next(interval time.Duration) (Item, bool, error) {
	for {
		if t.isClosed() {
			return Item{}, false, ErrTailClosed
		}
		items, err := t.log.Read(ReadOptions{Start: t.pos + 1, Limit: tailScanBatch})
		if err != nil {
			return Item{}, false, err
		}
		for _, it := range items {
			t.pos = it.Seq
			env, ok := DecodeEnvelope(it.Header)
			if !ok || env.IsSentinel() {
				continue
			}
			if t.filter.match(env) {
				return it, true, nil
			}
		}
		if len(items) > 0 {
			// scanned records but none matched; keep scanning toward the head
			continue
		}
		if !t.log.WaitForAppend(interval, t.done) {
			if t.isClosed() {
				return Item{}, false, ErrTailClosed
			}
			return Item{}, false, nil
		}
	}
}
