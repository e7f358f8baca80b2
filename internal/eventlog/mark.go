package eventlog

import (
	"encoding/binary"
	"errors"

	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"
)

// SaveMark stores the last observed position for a (channel, client) pair
// idempotently. A position lower than the stored one is ignored, so a late
// write can never regress a subscriber's resume point.
func (l *Log) SaveMark(channel, client string, seq uint64) error {
	key := KeyMark(l.namespace, channel, client)
	cur, err := l.db.Get(key)
	if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return err
	}
	if err == nil && len(cur) >= 8 {
		if seq <= binary.BigEndian.Uint64(cur[:8]) {
			return nil
		}
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return l.db.Set(key, b[:])
}

// LoadMark returns the stored position for a (channel, client) pair.
func (l *Log) LoadMark(channel, client string) (uint64, bool) {
	cur, err := l.db.Get(KeyMark(l.namespace, channel, client))
	if err != nil || len(cur) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(cur[:8]), true
}
