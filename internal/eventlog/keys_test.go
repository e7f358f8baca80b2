package eventlog

import (
	"bytes"
	"testing"
)

func TestEntryKeysOrderBySeq(t *testing.T) {
	a := KeyLogEntry("ns", 1)
	b := KeyLogEntry("ns", 2)
	c := KeyLogEntry("ns", 1<<40)
	if !(bytes.Compare(a, b) < 0 && bytes.Compare(b, c) < 0) {
		t.Fatalf("entry keys must sort by sequence")
	}
	if entrySeqFromKey(c) != 1<<40 {
		t.Fatalf("seq extraction failed")
	}
}

func TestKeysAreNamespaced(t *testing.T) {
	if bytes.Equal(KeyLogMeta("a"), KeyLogMeta("b")) {
		t.Fatalf("meta keys must differ per namespace")
	}
	if bytes.Equal(KeyMark("ns", "c1", "x"), KeyMark("ns", "c2", "x")) {
		t.Fatalf("mark keys must differ per channel")
	}
}
