package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTrace = []string{
	"cart count=1 subtotal=5.00",
	"create_order tok-1",
	"order_created order-1",
	"create_session order-1",
	"session_created order-1",
	"confirm order-1",
}

func TestAssertTraceContains(t *testing.T) {
	assert.NoError(t, assertTraceContains(sampleTrace, Assertion{Event: "create_order tok-1"}))

	err := assertTraceContains(sampleTrace, Assertion{Event: "create_order tok-2"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "[2] create_order tok-1")
}

func TestAssertTraceOrder(t *testing.T) {
	assert.NoError(t, assertTraceOrder(sampleTrace, Assertion{Events: []string{
		"create_order tok-1", "create_session order-1", "confirm order-1",
	}}))

	err := assertTraceOrder(sampleTrace, Assertion{Events: []string{
		"create_session order-1", "create_order tok-1",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"create_order tok-1" missing or out of order`)
}

func TestAssertTraceCount(t *testing.T) {
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Prefix: "create_", Count: 2}))
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Prefix: "alert", Count: 0}))
	assert.Error(t, assertTraceCount(sampleTrace, Assertion{Prefix: "cart ", Count: 2}))
}

func TestAssertFinalState(t *testing.T) {
	final := FinalState{State: "succeeded", CartCount: 0, Subtotal: "0.00", Orders: 1}

	assert.NoError(t, assertFinalState(final, Assertion{Expect: map[string]any{
		"state": "succeeded", "cart_count": 0, "subtotal": "0.00", "orders": 1,
	}}))

	err := assertFinalState(final, Assertion{Expect: map[string]any{"orders": 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders=1 (want 2)")

	err = assertFinalState(final, Assertion{Expect: map[string]any{"colour": "red"}})
	assert.ErrorContains(t, err, `unknown field "colour"`)
}

func TestLooseEqual(t *testing.T) {
	assert.True(t, looseEqual(2, 2))
	assert.True(t, looseEqual("40.00", "40.00"))
	assert.False(t, looseEqual("40", "40.00"))
	assert.True(t, looseEqual("", ""))
}
