package bus

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// deliveryFilter wraps a compiled CEL program evaluated against each message
// that survived the engine-level channel and self-exclusion filters. When
// disabled, Eval always returns true.
//
// Variables exposed to expressions:
//
//	channel (string), from (string), kind (string), ts_ms (int),
//	size (int), data (dyn, the parsed JSON payload), now_ms (int)
type deliveryFilter struct {
	prog    cel.Program
	enabled bool
}

func newDeliveryFilter(expr string) (deliveryFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return deliveryFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("channel", cel.StringType),
		cel.Variable("from", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("size", cel.IntType),
		cel.Variable("data", cel.DynType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return deliveryFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return deliveryFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return deliveryFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return deliveryFilter{}, err
	}
	return deliveryFilter{prog: prog, enabled: true}, nil
}

// Eval reports whether m should be delivered. Evaluation errors and
// non-boolean results suppress the message rather than failing the stream.
func (f deliveryFilter) Eval(m Message) bool {
	if !f.enabled {
		return true
	}
	var dataObj any
	_ = json.Unmarshal(m.Data, &dataObj)
	out, _, err := f.prog.Eval(map[string]any{
		"channel": m.Channel,
		"from":    m.From,
		"kind":    m.Type,
		"ts_ms":   m.TsMs,
		"size":    int64(len(m.Data)),
		"data":    dataObj,
		"now_ms":  time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
