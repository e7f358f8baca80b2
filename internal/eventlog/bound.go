package eventlog

import (
	"context"
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// enforceBoundLocked deletes the oldest entries until totalBytes fits the
// configured bound again. The newest entry is always retained so a position
// watermark can still be resolved from the log. Caller holds l.mu.
func (l *Log) enforceBoundLocked(ctx context.Context) error {
	low := KeyLogEntry(l.namespace, 0)
	hi := KeyLogEntry(l.namespace, ^uint64(0))
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return err
	}
	defer iter.Close()

	b := l.db.NewBatch()
	defer b.Close()

	freed := int64(0)
	deleted := 0
	for ok := iter.First(); ok && l.totalBytes-freed > l.maxBytes; ok = iter.Next() {
		if entrySeqFromKey(iter.Key()) == l.lastSeq {
			break
		}
		if err := b.Delete(iter.Key(), nil); err != nil {
			return err
		}
		freed += int64(len(iter.Value()))
		deleted++
	}
	if deleted == 0 {
		return iter.Error()
	}

	newTotal := l.totalBytes - freed
	var meta [16]byte
	binary.BigEndian.PutUint64(meta[:8], l.lastSeq)
	binary.BigEndian.PutUint64(meta[8:16], uint64(newTotal))
	if err := b.Set(KeyLogMeta(l.namespace), meta[:], nil); err != nil {
		return err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return err
	}
	l.totalBytes = newTotal
	return nil
}
