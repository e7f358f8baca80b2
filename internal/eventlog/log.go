package eventlog

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"
)

// DefaultMaxSizeBytes bounds a namespace log when no override is configured.
const DefaultMaxSizeBytes = 10 * 1024 * 1024

// AppendRecord represents a single appendable record.
type AppendRecord struct {
	Header  []byte
	Payload []byte
}

// Options configures a namespace log.
type Options struct {
	// MaxSizeBytes caps the total encoded size of retained entries.
	MaxSizeBytes int64
}

// Log provides append-only operations for one namespace. All channels of the
// namespace share it; appends assign strictly increasing positions.
type Log struct {
	db        *pebblestore.DB
	namespace string
	maxBytes  int64

	mu         sync.Mutex
	lastSeq    uint64
	totalBytes int64
	notifyCh   chan struct{}
}

// OpenLog initializes a Log and loads the last sequence and byte total from
// metadata (if any).
func OpenLog(db *pebblestore.DB, namespace string, opts Options) (*Log, error) {
	maxBytes := opts.MaxSizeBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSizeBytes
	}
	l := &Log{db: db, namespace: namespace, maxBytes: maxBytes, notifyCh: make(chan struct{})}
	meta, err := db.Get(KeyLogMeta(namespace))
	if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return nil, err
	}
	if err == nil && len(meta) >= 16 {
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
		l.totalBytes = int64(binary.BigEndian.Uint64(meta[8:16]))
	}
	return l, nil
}

// Namespace returns the namespace this log belongs to.
func (l *Log) Namespace() string { return l.namespace }

// Append appends the provided records as a single atomic, acknowledged batch
// and returns the assigned positions. After the commit it enforces the byte
// bound by trimming the oldest entries.
func (l *Log) Append(ctx context.Context, recs []AppendRecord) ([]uint64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	prevSeq, prevBytes := l.lastSeq, l.totalBytes

	b := l.db.NewBatch()
	defer b.Close()

	seqs := make([]uint64, len(recs))
	for i, r := range recs {
		l.lastSeq++
		val := EncodeRecord(r.Header, r.Payload)
		if err := b.Set(KeyLogEntry(l.namespace, l.lastSeq), val, nil); err != nil {
			l.lastSeq, l.totalBytes = prevSeq, prevBytes
			return nil, err
		}
		l.totalBytes += int64(len(val))
		seqs[i] = l.lastSeq
	}
	if err := b.Set(KeyLogMeta(l.namespace), l.encodeMeta(), nil); err != nil {
		l.lastSeq, l.totalBytes = prevSeq, prevBytes
		return nil, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		l.lastSeq, l.totalBytes = prevSeq, prevBytes
		return nil, err
	}

	// wake tail waiters
	close(l.notifyCh)
	l.notifyCh = make(chan struct{})

	if l.totalBytes > l.maxBytes {
		// Bound enforcement is best-effort: the append is already durable, and
		// a failed trim leaves the log oversized until the next append.
		_ = l.enforceBoundLocked(ctx)
	}
	return seqs, nil
}

// MostRecent returns the newest record in the log, if any.
func (l *Log) MostRecent() (Item, bool, error) {
	items, err := l.Read(ReadOptions{Reverse: true, Limit: 1})
	if err != nil || len(items) == 0 {
		return Item{}, false, err
	}
	return items[0], true, nil
}

func (l *Log) encodeMeta() []byte {
	var meta [16]byte
	binary.BigEndian.PutUint64(meta[:8], l.lastSeq)
	binary.BigEndian.PutUint64(meta[8:16], uint64(l.totalBytes))
	return meta[:]
}
