package bus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFilterMatchesEverything(t *testing.T) {
	f, err := newDeliveryFilter("  ")
	require.NoError(t, err)
	assert.True(t, f.Eval(Message{Channel: "orders"}))
}

func TestFilterOnRoutingFields(t *testing.T) {
	f, err := newDeliveryFilter(`channel == "orders" && kind == "created"`)
	require.NoError(t, err)
	assert.True(t, f.Eval(Message{Channel: "orders", Type: "created"}))
	assert.False(t, f.Eval(Message{Channel: "orders", Type: "deleted"}))
	assert.False(t, f.Eval(Message{Channel: "billing", Type: "created"}))
}

func TestFilterOnPayload(t *testing.T) {
	f, err := newDeliveryFilter(`data.amount > 10 && data.currency == "EUR"`)
	require.NoError(t, err)
	assert.True(t, f.Eval(Message{Data: json.RawMessage(`{"amount":25,"currency":"EUR"}`)}))
	assert.False(t, f.Eval(Message{Data: json.RawMessage(`{"amount":5,"currency":"EUR"}`)}))
	// missing fields make the expression error out, which suppresses delivery
	assert.False(t, f.Eval(Message{Data: json.RawMessage(`{}`)}))
	assert.False(t, f.Eval(Message{Data: nil}))
}

func TestFilterNonBooleanResultSuppresses(t *testing.T) {
	f, err := newDeliveryFilter(`size`)
	require.NoError(t, err)
	assert.False(t, f.Eval(Message{Data: json.RawMessage(`{"a":1}`)}))
}

func TestFilterSyntaxError(t *testing.T) {
	_, err := newDeliveryFilter(`kind ==`)
	require.Error(t, err)
}
