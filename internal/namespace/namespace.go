// Package namespace bootstraps the per-namespace bounded log: exactly one
// log exists per namespace, created idempotently and safely under concurrent
// callers.
package namespace

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vivocha/vubsub/internal/eventlog"
	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"
)

// ErrLogUnavailable is returned when the bootstrap exhausted both creation
// attempts. It is fatal for the call; callers must not retry indefinitely.
var ErrLogUnavailable = errors.New("namespace: log unavailable")

var errExists = errors.New("namespace: already exists")

// Meta holds namespace metadata.
type Meta struct {
	Name         string `json:"name"`
	CreatedAtMs  int64  `json:"createdAtMs"`
	MaxSizeBytes int64  `json:"maxSizeBytes"`
}

var nsMetaPrefix = []byte("nsmeta/")

func nsMetaKey(ns string) []byte {
	k := make([]byte, 0, len(nsMetaPrefix)+len(ns))
	k = append(k, nsMetaPrefix...)
	k = append(k, ns...)
	return k
}

// Ensure creates the namespace meta record if absent and returns the
// effective meta. Two concurrent first-time callers may race: one creates
// after the other's existence check fails. A second get-or-create attempt is
// therefore made before surfacing ErrLogUnavailable; this collapses the race
// window without a lock.
func Ensure(db *pebblestore.DB, name string, maxSizeBytes int64) (Meta, error) {
	if maxSizeBytes <= 0 {
		maxSizeBytes = eventlog.DefaultMaxSizeBytes
	}

	if m, err := get(db, name); err == nil {
		return m, nil
	}
	m, err := create(db, name, maxSizeBytes)
	if err == nil {
		return m, nil
	}
	// Take two: a concurrent creator may have won the race.
	if m, gerr := get(db, name); gerr == nil {
		return m, nil
	}
	if m, cerr := create(db, name, maxSizeBytes); cerr == nil {
		return m, nil
	}
	return Meta{}, fmt.Errorf("%w: %q: %v", ErrLogUnavailable, name, err)
}

// EnsureLog bootstraps the namespace and opens its bounded log.
func EnsureLog(db *pebblestore.DB, name string, maxSizeBytes int64) (*eventlog.Log, error) {
	m, err := Ensure(db, name, maxSizeBytes)
	if err != nil {
		return nil, err
	}
	return eventlog.OpenLog(db, m.Name, eventlog.Options{MaxSizeBytes: m.MaxSizeBytes})
}

func get(db *pebblestore.DB, name string) (Meta, error) {
	b, err := db.Get(nsMetaKey(name))
	if err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, err
	}
	return m, nil
}

func create(db *pebblestore.DB, name string, maxSizeBytes int64) (Meta, error) {
	// strict create: lose to an existing record rather than overwrite it,
	// so a racing creator's meta (and its CreatedAtMs) is preserved
	if _, err := db.Get(nsMetaKey(name)); err == nil {
		return Meta{}, errExists
	} else if !errors.Is(err, pebblestore.ErrNotFound) {
		return Meta{}, err
	}
	m := Meta{Name: name, CreatedAtMs: time.Now().UnixMilli(), MaxSizeBytes: maxSizeBytes}
	bytes, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}
	if err := db.Set(nsMetaKey(name), bytes); err != nil {
		return Meta{}, err
	}
	return m, nil
}
