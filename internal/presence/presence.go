// Package presence tracks which clients are connected to which channels and
// their last heartbeat. Rows are discovery metadata only; they are never in
// the delivery path, and a stale row closes nothing.
package presence

import (
	"encoding/json"

	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"

	"github.com/cockroachdb/pebble"
)

// Row is one active (client, channel) pair.
type Row struct {
	Client    string `json:"client"`
	Channel   string `json:"channel"`
	Namespace string `json:"ns"`
	PingMs    int64  `json:"pingMs"`
}

// Key builds the row key: presence/{ns}/{channel}/{client}.
func Key(ns, channel, client string) []byte {
	k := make([]byte, 0, len(ns)+len(channel)+len(client)+12)
	k = append(k, "presence/"...)
	k = append(k, ns...)
	k = append(k, '/')
	k = append(k, channel...)
	k = append(k, '/')
	k = append(k, client...)
	return k
}

func prefix(ns, channel string) []byte {
	k := make([]byte, 0, len(ns)+len(channel)+12)
	k = append(k, "presence/"...)
	k = append(k, ns...)
	k = append(k, '/')
	k = append(k, channel...)
	k = append(k, '/')
	return k
}

// Upsert writes a row with acknowledgment.
func Upsert(db *pebblestore.DB, row Row) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return db.Set(Key(row.Namespace, row.Channel, row.Client), b)
}

// Delete removes a row. Deleting an absent row is not an error.
func Delete(db *pebblestore.DB, ns, channel, client string) error {
	return db.Delete(Key(ns, channel, client))
}

// Find lists the rows for a channel in the store's natural key order.
func Find(db *pebblestore.DB, ns, channel string) ([]Row, error) {
	p := prefix(ns, channel)
	upper := append(append([]byte(nil), p...), 0xff)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: p, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var rows []Row
	for ok := iter.First(); ok; ok = iter.Next() {
		var r Row
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			continue
		}
		rows = append(rows, r)
	}
	return rows, iter.Error()
}

// Count returns the number of rows for a channel.
func Count(db *pebblestore.DB, ns, channel string) (int, error) {
	rows, err := Find(db, ns, channel)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
