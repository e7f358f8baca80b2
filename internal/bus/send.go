package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vivocha/vubsub/internal/eventlog"
	"github.com/vivocha/vubsub/internal/presence"
	"github.com/vivocha/vubsub/internal/runtime"
)

// Send publishes a message without a registered client, on behalf of an
// arbitrary sender name, and returns the message as inserted. Subscriptions
// owned by a client with the same id as from will not receive it.
func Send(ctx context.Context, rt *runtime.Runtime, ns, channel, from, kind string, data []byte) (Message, error) {
	if channel == "" {
		return Message{}, errors.New("bus: channel name required")
	}
	return publish(ctx, rt, ns, channel, from, kind, data)
}

// publish is the shared append path: acked batch, composed message back.
func publish(ctx context.Context, rt *runtime.Runtime, ns, channel, from, kind string, data []byte) (Message, error) {
	l, err := rt.EnsureLog(ns)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	env := eventlog.Envelope{
		TsMs:    time.Now().UnixMilli(),
		Channel: channel,
		From:    from,
		Type:    kind,
	}
	seqs, err := l.Append(ctx, []eventlog.AppendRecord{{Header: eventlog.EncodeEnvelope(env), Payload: data}})
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return Message{
		Position: seqs[0],
		TsMs:     env.TsMs,
		Channel:  channel,
		From:     from,
		Type:     kind,
		Data:     data,
	}, nil
}

// Find lists the clients present on a channel.
func Find(rt *runtime.Runtime, ns, channel string) ([]presence.Row, error) {
	return presence.Find(rt.DB(), resolveNamespace(rt, ns), channel)
}

// Count returns how many clients are present on a channel.
func Count(rt *runtime.Runtime, ns, channel string) (int, error) {
	return presence.Count(rt.DB(), resolveNamespace(rt, ns), channel)
}

func resolveNamespace(rt *runtime.Runtime, ns string) string {
	if ns == "" {
		return rt.Config().DefaultNamespaceName
	}
	return ns
}
