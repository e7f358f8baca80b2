package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vivocha/vubsub/internal/eventlog"
	"github.com/vivocha/vubsub/pkg/log"
)

// State names the lifecycle phase of a subscription.
type State int32

const (
	// StateInitializing covers bootstrap: opening the namespace log,
	// resolving the start position and opening the stream handle.
	StateInitializing State = iota
	// StateStreaming means one blocking read is outstanding at all times.
	StateStreaming
	// StateReinitializing follows a stream fault; the subscription reopens
	// its handle from the current position.
	StateReinitializing
	// StateClosed is terminal; the events channel has been or is about to be
	// closed.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateStreaming:
		return "streaming"
	case StateReinitializing:
		return "reinitializing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const eventBufferSize = 64

// closeGrace bounds how long finish waits for a draining consumer to free a
// buffer slot for the final close event.
const closeGrace = 5 * time.Second

// Subscription is one client's live view of a channel. A single goroutine
// drives it: exactly one blocking read is outstanding while streaming, so
// delivery order matches log order.
type Subscription struct {
	client  *Client
	channel string
	opts    JoinOptions
	filter  deliveryFilter
	retry   time.Duration
	logger  log.Logger

	events chan Event
	quit   chan struct{}

	state atomic.Int32

	mu        sync.Mutex
	tail      *eventlog.Tail
	watermark uint64
	closed    bool

	closeOnce sync.Once
}

func newSubscription(c *Client, channel string, opts JoinOptions, filter deliveryFilter) *Subscription {
	return &Subscription{
		client:  c,
		channel: channel,
		opts:    opts,
		filter:  filter,
		retry:   c.rt.Config().TailRetryInterval(),
		logger:  c.logger.With(log.Str("channel", channel)),
		events:  make(chan Event, eventBufferSize),
		quit:    make(chan struct{}),
	}
}

// Events returns the subscription's event channel. It is closed after the
// close event; consumers should range over it.
func (s *Subscription) Events() <-chan Event { return s.events }

// Channel returns the subscribed channel name.
func (s *Subscription) Channel() string { return s.channel }

// State returns the current lifecycle phase.
func (s *Subscription) State() State { return State(s.state.Load()) }

// Position returns the last position the subscription has observed. Zero
// means nothing has been observed yet.
func (s *Subscription) Position() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

// Send publishes on the subscription's channel through its client.
func (s *Subscription) Send(ctx context.Context, kind string, data []byte) (Message, error) {
	return s.client.Send(ctx, s.channel, kind, data)
}

// Close stops the subscription and wakes any in-flight read. Safe to call
// concurrently and more than once; exactly one close event is emitted.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	t := s.tail
	s.tail = nil
	s.mu.Unlock()

	close(s.quit)
	if t != nil {
		t.Close()
	}
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// setTail installs the live stream handle, unless Close already won.
func (s *Subscription) setTail(t *eventlog.Tail) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.tail = t
	return true
}

func (s *Subscription) clearTail() {
	s.mu.Lock()
	s.tail = nil
	s.mu.Unlock()
}

func (s *Subscription) advance(pos uint64) {
	s.mu.Lock()
	if pos > s.watermark {
		s.watermark = pos
	}
	s.mu.Unlock()
}

// emit delivers an event, blocking until the consumer takes it or the
// subscription is closed.
func (s *Subscription) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.quit:
		return false
	}
}

// finish transitions to closed, emits the final close event and closes the
// events channel.
func (s *Subscription) finish() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		timer := time.NewTimer(closeGrace)
		defer timer.Stop()
		select {
		case s.events <- Event{Kind: EventClose}:
		case <-timer.C:
			// consumer abandoned a full buffer; the channel close below still
			// signals termination
		}
		close(s.events)
		s.client.dropSubscription(s.channel, s)
	})
}

// run drives the subscription lifecycle until it is closed or the first
// initialization fails.
func (s *Subscription) run() {
	first := true
	for {
		l, err := s.client.rt.EnsureLog(s.client.ns)
		if err == nil {
			err = s.bootstrap(l, first)
		}
		if err != nil {
			if first {
				s.emit(Event{Kind: EventError, Err: fmt.Errorf("%w: %w", ErrInitFailed, err)})
				s.finish()
				return
			}
			s.logger.Warn("reinitialize failed, retrying", log.Err(err))
			if !s.pause() {
				s.finish()
				return
			}
			continue
		}

		t := l.Tail(eventlog.Filter{
			AfterSeq:    s.Position(),
			Channel:     s.channel,
			ExcludeFrom: s.client.id,
		})
		if !s.setTail(t) {
			t.Close()
			s.finish()
			return
		}

		s.state.Store(int32(StateStreaming))
		if first {
			first = false
			if !s.emit(Event{Kind: EventReady}) {
				s.finish()
				return
			}
			s.logger.Debug("subscription streaming", log.Uint64("position", s.Position()))
		}

		reinit, streamErr := s.stream(l, t)
		s.clearTail()
		t.Close()
		if !reinit {
			s.finish()
			return
		}
		// recoverable fault: a diagnostic log line, never a consumer event
		s.state.Store(int32(StateReinitializing))
		s.logger.Warn("stream fault, reinitializing", log.Err(streamErr), log.Uint64("position", s.Position()))
		if !s.pause() {
			s.finish()
			return
		}
	}
}

// bootstrap resolves the start position on the first pass. An empty log with
// no resume point gets a sentinel record appended so the stream has a
// position to anchor on; the sentinel itself is never delivered. Later
// passes keep the current watermark.
func (s *Subscription) bootstrap(l *eventlog.Log, first bool) error {
	if !first {
		return nil
	}
	if s.opts.After > 0 {
		s.advance(s.opts.After)
		return nil
	}
	if s.opts.FromSaved {
		if m, ok := l.LoadMark(s.channel, s.client.id); ok {
			s.advance(m)
			return nil
		}
	}
	item, ok, err := l.MostRecent()
	if err != nil {
		return err
	}
	if ok {
		s.advance(item.Seq)
		return nil
	}
	header := eventlog.EncodeEnvelope(eventlog.Envelope{TsMs: time.Now().UnixMilli()})
	seqs, err := l.Append(context.Background(), []eventlog.AppendRecord{{Header: header}})
	if err != nil {
		return err
	}
	s.advance(seqs[0])
	return nil
}

// stream consumes the tail until a fault, a benign shutdown or Close. It
// reports whether the subscription should reinitialize.
func (s *Subscription) stream(l *eventlog.Log, t *eventlog.Tail) (bool, error) {
	for {
		item, ok, err := t.Next(s.retry)
		if err != nil {
			if s.isClosed() {
				return false, nil
			}
			// includes a handle that died without the subscription closing;
			// treated like any other stream fault
			return true, err
		}
		if s.isClosed() {
			// outcome observed after the handle was released
			return false, nil
		}
		if !ok {
			continue
		}

		env, decoded := eventlog.DecodeEnvelope(item.Header)
		s.advance(item.Seq)
		if err := l.SaveMark(s.channel, s.client.id, item.Seq); err != nil {
			s.logger.Debug("save position failed", log.Err(err), log.Uint64("position", item.Seq))
		}
		if !decoded {
			continue
		}
		msg := messageFromItem(item, env)
		if !s.filter.Eval(msg) {
			continue
		}
		if !s.emit(Event{Kind: EventData, Message: &msg}) {
			return false, nil
		}
	}
}

// pause waits one retry interval between reinitialization attempts.
func (s *Subscription) pause() bool {
	timer := time.NewTimer(s.retry)
	defer timer.Stop()
	select {
	case <-s.quit:
		return false
	case <-timer.C:
		return true
	}
}
