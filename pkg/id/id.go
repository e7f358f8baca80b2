package id

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
	"time"
)

// ID is a 128-bit client identifier: 8 bytes of big-endian unix milliseconds
// followed by 8 bytes of per-process sequence.
type ID [16]byte

// String returns the 32-character lowercase hex form used in directory keys.
// Hex encoding preserves byte order, so the strings sort chronologically.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Time returns the issue timestamp embedded in the identifier.
func (i ID) Time() time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(i[:8])))
}

// nowMs is stubbed by tests.
var nowMs = func() int64 { return time.Now().UnixMilli() }

// Generator issues strictly increasing IDs for one process.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	seq    uint64
}

// NewGenerator creates a Generator.
func NewGenerator() *Generator { return &Generator{} }

// Next returns an ID strictly greater than every ID this generator has
// issued. A clock that runs backwards is pinned to the last issued
// millisecond; a sequence that would overflow within one millisecond waits
// for the clock to advance.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := nowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}
	switch {
	case ms > g.lastMs:
		g.seq = 0
	case g.seq == math.MaxUint64:
		for ms <= g.lastMs {
			time.Sleep(125 * time.Microsecond)
			ms = nowMs()
		}
		g.seq = 0
	default:
		g.seq++
	}
	g.lastMs = ms

	var out ID
	binary.BigEndian.PutUint64(out[:8], uint64(ms))
	binary.BigEndian.PutUint64(out[8:], g.seq)
	return out
}
