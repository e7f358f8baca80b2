package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vivocha/vubsub/internal/runtime"
	"github.com/vivocha/vubsub/pkg/id"
	"github.com/vivocha/vubsub/pkg/log"
)

// clientRow is the persisted directory entry for a registered client.
type clientRow struct {
	ID        string          `json:"id"`
	Namespace string          `json:"ns"`
	CreatedMs int64           `json:"createdMs"`
	PingMs    int64           `json:"pingMs"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

func clientKey(ns, clientID string) []byte {
	k := make([]byte, 0, len(ns)+len(clientID)+10)
	k = append(k, "clients/"...)
	k = append(k, ns...)
	k = append(k, '/')
	k = append(k, clientID...)
	return k
}

// Registry hands out process-scoped client identities. The identity row is
// persisted for discovery, but the Client handle itself lives only in this
// process: a restart registers anew.
type Registry struct {
	rt     *runtime.Runtime
	logger log.Logger
	gen    *id.Generator

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry creates a Registry on top of an open runtime.
func NewRegistry(rt *runtime.Runtime, logger log.Logger) *Registry {
	return &Registry{
		rt:      rt,
		logger:  logger.WithComponent("bus.registry"),
		gen:     id.NewGenerator(),
		clients: map[string]*Client{},
	}
}

// Register creates a client bound to a namespace, with optional caller
// metadata (a JSON document) persisted alongside it. The namespace log is
// bootstrapped eagerly so the first Join or Send does not pay for it, and the
// client's directory row is written with acknowledgment before the handle is
// returned.
func (r *Registry) Register(ctx context.Context, ns string, meta json.RawMessage) (*Client, error) {
	if ns == "" {
		ns = r.rt.Config().DefaultNamespaceName
	}
	if _, err := r.rt.EnsureLog(ns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	// the identifier embeds the registration instant
	cid := r.gen.Next()
	clientID := cid.String()
	now := cid.Time().UnixMilli()
	c := &Client{
		id:        clientID,
		ns:        ns,
		createdMs: now,
		meta:      meta,
		rt:        r.rt,
		logger:    r.logger.With(log.Str("client", clientID), log.Str("namespace", ns)),
		subs:      map[string]*Subscription{},
	}
	if err := c.saveRow(now); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	r.mu.Lock()
	r.clients[clientID] = c
	r.mu.Unlock()

	r.logger.Info("client registered", log.Str("client", clientID), log.Str("namespace", ns))
	return c, nil
}

// Get returns a previously registered client handle.
func (r *Registry) Get(clientID string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[clientID]
	if !ok {
		return nil, ErrUnknownClient
	}
	return c, nil
}

// Deregister closes a client and forgets its handle and directory row.
func (r *Registry) Deregister(ctx context.Context, clientID string) error {
	r.mu.Lock()
	c, ok := r.clients[clientID]
	delete(r.clients, clientID)
	r.mu.Unlock()
	if !ok {
		return ErrUnknownClient
	}
	if err := c.Close(ctx); err != nil {
		return err
	}
	return r.rt.DB().Delete(clientKey(c.ns, c.id))
}

// Close closes every registered client. Directory rows are kept.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = map[string]*Client{}
	r.mu.Unlock()

	var firstErr error
	for _, c := range clients {
		if err := c.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Client) saveRow(pingMs int64) error {
	b, err := json.Marshal(clientRow{ID: c.id, Namespace: c.ns, CreatedMs: c.createdMs, PingMs: pingMs, Meta: c.meta})
	if err != nil {
		return err
	}
	return c.rt.DB().Set(clientKey(c.ns, c.id), b)
}
