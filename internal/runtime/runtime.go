package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	cfgpkg "github.com/vivocha/vubsub/internal/config"
	"github.com/vivocha/vubsub/internal/eventlog"
	"github.com/vivocha/vubsub/internal/namespace"
	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Runtime wires storage and config for a single-node instance. It caches one
// Log per namespace so every publisher and tail in the process shares the
// same append-notification channel.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config

	mu   sync.Mutex
	logs map[string]*eventlog.Log
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval})
	if err != nil {
		return nil, err
	}
	return &Runtime{db: db, config: opts.Config, logs: map[string]*eventlog.Log{}}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	r.mu.Lock()
	r.logs = map[string]*eventlog.Log{}
	r.mu.Unlock()
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// EnsureLog bootstraps the namespace (double-attempt get-or-create) and
// returns its bounded log.
func (r *Runtime) EnsureLog(ns string) (*eventlog.Log, error) {
	if ns == "" {
		ns = r.config.DefaultNamespaceName
	}
	r.mu.Lock()
	if l, ok := r.logs[ns]; ok {
		r.mu.Unlock()
		return l, nil
	}
	r.mu.Unlock()

	l, err := namespace.EnsureLog(r.db, ns, r.config.LogMaxSizeBytes)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.logs[ns]; ok {
		return cached, nil
	}
	r.logs[ns] = l
	return l, nil
}

// DB exposes the underlying DB for directory rows (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
