package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
)

// Record encoding: varint headerLen | header | payload | crc32c(header|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeRecord frames a header and payload with a trailing checksum.
func EncodeRecord(header, payload []byte) []byte {
	out := make([]byte, 0, 10+len(header)+len(payload)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(header)))
	out = append(out, tmp[:n]...)
	out = append(out, header...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	out = append(out, crcb[:]...)
	return out
}

// Decoded is a framed record split back into header and payload.
type Decoded struct {
	Header  []byte
	Payload []byte
}

// DecodeRecord validates the frame and checksum, returning copies.
func DecodeRecord(b []byte) (Decoded, bool) {
	if len(b) < 1+4 {
		return Decoded{}, false
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 {
		return Decoded{}, false
	}
	// compare in uint64 space: a corrupt hlen near MaxUint64 must not wrap
	// negative through int conversion
	rest := len(b) - n - 4
	if rest < 0 || hlen > uint64(rest) {
		return Decoded{}, false
	}
	header := b[n : n+int(hlen)]
	payload := b[n+int(hlen) : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != expect {
		return Decoded{}, false
	}
	return Decoded{Header: append([]byte(nil), header...), Payload: append([]byte(nil), payload...)}, true
}

// Envelope is the routing header of a record: publish timestamp plus the
// channel/sender/type triple used by tail filters. A sentinel record carries
// only the timestamp.
type Envelope struct {
	TsMs    int64
	Channel string
	From    string
	Type    string
}

type envelopeJSON struct {
	Channel string `json:"channel,omitempty"`
	From    string `json:"from,omitempty"`
	Type    string `json:"type,omitempty"`
}

// EncodeEnvelope renders an envelope as [8B be ts_ms][JSON], with the JSON
// part omitted when the routing fields are all empty (sentinels).
func EncodeEnvelope(env Envelope) []byte {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(env.TsMs))
	if env.Channel == "" && env.From == "" && env.Type == "" {
		return ts[:]
	}
	j, err := json.Marshal(envelopeJSON{Channel: env.Channel, From: env.From, Type: env.Type})
	if err != nil {
		return ts[:]
	}
	return append(ts[:], j...)
}

// DecodeEnvelope parses a record header. It tolerates a bare timestamp
// (sentinel) and reports false only for malformed headers.
func DecodeEnvelope(header []byte) (Envelope, bool) {
	if len(header) < 8 {
		return Envelope{}, false
	}
	env := Envelope{TsMs: int64(binary.BigEndian.Uint64(header[:8]))}
	if len(header) == 8 {
		return env, true
	}
	var j envelopeJSON
	if err := json.Unmarshal(header[8:], &j); err != nil {
		return Envelope{}, false
	}
	env.Channel = j.Channel
	env.From = j.From
	env.Type = j.Type
	return env, true
}

// IsSentinel reports whether the envelope carries no routing information.
func (e Envelope) IsSentinel() bool {
	return e.Channel == "" && e.From == "" && e.Type == ""
}
