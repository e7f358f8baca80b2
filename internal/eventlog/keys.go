package eventlog

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - ns/{ns}/log/m
// - ns/{ns}/log/e/{seq_be8}
// - ns/{ns}/mark/{channel}/{client}

var (
	sep        = byte('/')
	nsPrefix   = []byte("ns/")
	logSeg     = []byte("/log")
	markSeg    = []byte("/mark/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyLogMeta builds the log metadata key for a namespace.
func KeyLogMeta(namespace string) []byte {
	k := make([]byte, 0, len(namespace)+16)
	k = append(k, nsPrefix...)
	k = append(k, namespace...)
	k = append(k, logSeg...)
	k = append(k, metaSuffix...)
	return k
}

// KeyLogEntry builds the entry key with a big-endian sequence for proper ordering.
func KeyLogEntry(namespace string, seq uint64) []byte {
	k := make([]byte, 0, len(namespace)+24)
	k = append(k, nsPrefix...)
	k = append(k, namespace...)
	k = append(k, logSeg...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

// KeyMark builds the durable watermark key for a (channel, client) pair.
func KeyMark(namespace, channel, client string) []byte {
	k := make([]byte, 0, len(namespace)+len(channel)+len(client)+16)
	k = append(k, nsPrefix...)
	k = append(k, namespace...)
	k = append(k, markSeg...)
	k = append(k, channel...)
	k = append(k, sep)
	k = append(k, client...)
	return k
}

// entrySeqFromKey extracts the sequence from an entry key.
func entrySeqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
