package eventlog

import (
	"github.com/cockroachdb/pebble"
)

// ReadOptions controls a range read over log entries.
type ReadOptions struct {
	// Start is the first position to include (0 means from the first entry,
	// or from the last when Reverse).
	Start uint64
	// Limit caps the number of returned items; 0 means no limit.
	Limit int
	// Reverse scans in descending position order.
	Reverse bool
}

// Item is a single stored record with its assigned position.
type Item struct {
	Seq     uint64
	Header  []byte
	Payload []byte
}

// Read returns up to Limit items starting at Start (inclusive). Records that
// fail frame validation are skipped.
func (l *Log) Read(opts ReadOptions) ([]Item, error) {
	low := KeyLogEntry(l.namespace, 0)
	hi := KeyLogEntry(l.namespace, ^uint64(0))

	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	items := make([]Item, 0, minCap(opts.Limit))

	if opts.Reverse {
		ok := false
		if opts.Start == 0 {
			ok = iter.Last()
		} else {
			ok = iter.SeekLT(append(KeyLogEntry(l.namespace, opts.Start), 0x00))
		}
		for ; ok && (opts.Limit == 0 || len(items) < opts.Limit); ok = iter.Prev() {
			if dec, okDec := DecodeRecord(iter.Value()); okDec {
				items = append(items, Item{Seq: entrySeqFromKey(iter.Key()), Header: dec.Header, Payload: dec.Payload})
			}
		}
		return items, iter.Error()
	}

	ok := false
	if opts.Start == 0 {
		ok = iter.First()
	} else {
		ok = iter.SeekGE(KeyLogEntry(l.namespace, opts.Start))
	}
	for ; ok && (opts.Limit == 0 || len(items) < opts.Limit); ok = iter.Next() {
		if dec, okDec := DecodeRecord(iter.Value()); okDec {
			items = append(items, Item{Seq: entrySeqFromKey(iter.Key()), Header: dec.Header, Payload: dec.Payload})
		}
	}
	return items, iter.Error()
}

func minCap(limit int) int {
	if limit <= 0 || limit > 64 {
		return 64
	}
	return limit
}
