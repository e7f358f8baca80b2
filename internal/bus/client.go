package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vivocha/vubsub/internal/presence"
	"github.com/vivocha/vubsub/internal/runtime"
	"github.com/vivocha/vubsub/pkg/log"
)

// Client is a registered identity on one namespace. A client holds at most
// one subscription per channel; messages it publishes are never delivered
// back to its own subscriptions.
type Client struct {
	id        string
	ns        string
	createdMs int64
	meta      json.RawMessage
	rt        *runtime.Runtime
	logger    log.Logger

	mu     sync.Mutex
	subs   map[string]*Subscription
	closed bool
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

// Namespace returns the namespace the client is bound to.
func (c *Client) Namespace() string { return c.ns }

// Meta returns the caller metadata supplied at registration, if any.
func (c *Client) Meta() json.RawMessage { return c.meta }

// JoinOptions controls where a subscription starts and what it delivers.
type JoinOptions struct {
	// After resumes delivery behind an explicit position. Zero means unset.
	After uint64
	// FromSaved resumes from the client's saved position for the channel,
	// when one exists. Ignored when After is set.
	FromSaved bool
	// Filter is an optional CEL expression evaluated per message; see
	// deliveryFilter for the variables it can reference.
	Filter string
}

// Join subscribes the client to a channel. Joining a channel the client is
// already subscribed to returns the existing subscription unchanged. The
// returned subscription emits a ready event once it is streaming.
func (c *Client) Join(ctx context.Context, channel string, opts JoinOptions) (*Subscription, error) {
	if channel == "" {
		return nil, errors.New("bus: channel name required")
	}
	filter, err := newDeliveryFilter(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("bus: invalid filter: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errClientClosed
	}
	if s, ok := c.subs[channel]; ok {
		c.mu.Unlock()
		return s, nil
	}
	s := newSubscription(c, channel, opts, filter)
	c.subs[channel] = s
	c.mu.Unlock()

	if err := presence.Upsert(c.rt.DB(), presence.Row{
		Client:    c.id,
		Channel:   channel,
		Namespace: c.ns,
		PingMs:    time.Now().UnixMilli(),
	}); err != nil {
		c.logger.Warn("presence upsert failed", log.Str("channel", channel), log.Err(err))
	}

	go s.run()
	return s, nil
}

// Leave closes the channel's subscription and removes the presence row.
// Leaving a channel the client is not subscribed to only clears presence.
func (c *Client) Leave(ctx context.Context, channel string) error {
	c.mu.Lock()
	s := c.subs[channel]
	delete(c.subs, channel)
	c.mu.Unlock()
	if s != nil {
		s.Close()
	}
	return presence.Delete(c.rt.DB(), c.ns, channel, c.id)
}

// Send publishes a message on a channel with acknowledged durability and
// returns the message as inserted, position included. The client's heartbeat
// is refreshed as a side effect.
func (c *Client) Send(ctx context.Context, channel, kind string, data []byte) (Message, error) {
	if channel == "" {
		return Message{}, errors.New("bus: channel name required")
	}
	if err := c.Ping(ctx); err != nil {
		c.logger.Warn("heartbeat before publish failed", log.Err(err))
	}
	return publish(ctx, c.rt, c.ns, channel, c.id, kind, data)
}

// Ping refreshes the client's directory row and every presence row for the
// channels it has joined.
func (c *Client) Ping(ctx context.Context) error {
	now := time.Now().UnixMilli()
	if err := c.saveRow(now); err != nil {
		return err
	}
	c.mu.Lock()
	channels := make([]string, 0, len(c.subs))
	for ch := range c.subs {
		channels = append(channels, ch)
	}
	c.mu.Unlock()
	for _, ch := range channels {
		row := presence.Row{Client: c.id, Channel: ch, Namespace: c.ns, PingMs: now}
		if err := presence.Upsert(c.rt.DB(), row); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every subscription and presence row held by the client.
// Safe to call more than once.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.subs = map[string]*Subscription{}
	c.mu.Unlock()

	for ch, s := range subs {
		s.Close()
		_ = presence.Delete(c.rt.DB(), c.ns, ch, c.id)
	}
	return nil
}

// dropSubscription detaches a subscription that closed on its own (engine
// fault or explicit Close on the handle) and clears its presence row.
func (c *Client) dropSubscription(channel string, s *Subscription) {
	c.mu.Lock()
	if cur, ok := c.subs[channel]; ok && cur == s {
		delete(c.subs, channel)
	}
	c.mu.Unlock()
	_ = presence.Delete(c.rt.DB(), c.ns, channel, c.id)
}
