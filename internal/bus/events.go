package bus

// EventKind enumerates the events a subscription emits.
type EventKind int

const (
	// EventReady is emitted exactly once, when the subscription first starts
	// streaming. Messages published before this point are not delivered unless
	// the subscription resumed from an earlier position.
	EventReady EventKind = iota + 1
	// EventData carries one delivered message.
	EventData
	// EventError reports a terminal initialization failure (ErrInitFailed);
	// a close event follows. Recoverable stream faults are never surfaced as
	// events, only logged, while the subscription reinitializes.
	EventError
	// EventClose is the final event; the events channel is closed after it.
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventData:
		return "data"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// Event is one occurrence on a subscription's event channel. Message is set
// for EventData, Err for EventError.
type Event struct {
	Kind    EventKind
	Message *Message
	Err     error
}
