package bus

import (
	"encoding/json"

	"github.com/vivocha/vubsub/internal/eventlog"
)

// Message is a delivered record. Position is the record's log position and
// doubles as the resume point: rejoining with After set to a message's
// Position continues right behind it.
type Message struct {
	Position uint64          `json:"position"`
	TsMs     int64           `json:"ts"`
	Channel  string          `json:"channel"`
	From     string          `json:"from"`
	Type     string          `json:"type,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func messageFromItem(it eventlog.Item, env eventlog.Envelope) Message {
	return Message{
		Position: it.Seq,
		TsMs:     env.TsMs,
		Channel:  env.Channel,
		From:     env.From,
		Type:     env.Type,
		Data:     json.RawMessage(it.Payload),
	}
}
