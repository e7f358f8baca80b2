// Package eventlog implements the bounded, append-only namespace log that
// carries all channel traffic for one namespace.
//
// # Overview
//
// One logical log exists per namespace, persisted in Pebble. Keys are
// lexicographically ordered for range scans:
//   - ns/{ns}/log/m                    (meta: lastSeq, totalBytes)
//   - ns/{ns}/log/e/{seq_be8}          (entries)
//   - ns/{ns}/mark/{channel}/{client}  (durable subscriber marks)
//
// Records are framed as: varint headerLen | header | payload | crc32c.
// The header is the message envelope: an 8-byte big-endian publish timestamp
// (ms) followed by optional JSON {channel, from, type}. A sentinel record has
// a bare timestamp header and no payload; it only establishes a position.
//
// Positions are uint64 sequences assigned at append time, strictly increasing
// from 1. Position 0 is "unset" throughout the bus.
//
// # Bounded retention
//
// Appends maintain a running byte total in the meta record. When the total
// exceeds the configured bound, the oldest entries are deleted until the log
// fits again, always keeping the newest entry. Subscribers that fall behind
// the bound observe a position gap on their next read, never an error.
//
// # Tailing
//
// Tail returns a stateful stream handle filtered by position, channel, and
// sender exclusion:
//
//	t := l.Tail(eventlog.Filter{AfterSeq: mark, Channel: "orders", ExcludeFrom: me})
//	item, ok, err := t.Next(200 * time.Millisecond)
//
// Next scans forward and blocks on the append notification channel once it
// reaches the head. The three outcomes mirror a tailable cursor: a record
// (ok), a benign timeout (!ok, nil error), or a fault (err). A released
// handle reports ErrTailClosed.
package eventlog
