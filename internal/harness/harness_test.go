package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFile(t *testing.T, path string) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_ScenarioFilesPass(t *testing.T) {
	for _, name := range []string{
		"delivered_prints_checkout",
		"rejected_order_retry",
		"abandoned_session",
	} {
		t.Run(name, func(t *testing.T) {
			result := runFile(t, "testdata/scenarios/"+name+".yaml")
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_AbandonedSessionFinalState(t *testing.T) {
	result := runFile(t, "testdata/scenarios/abandoned_session.yaml")

	assert.Equal(t, FinalState{State: "failed", CartCount: 3, Subtotal: "55.50", Orders: 1}, result.Final)
}

func TestRun_ReportsUnmetExpectations(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: expectations that do not hold
catalog:
  - { id: p, title: P, price: "5.00", category: prints }
steps:
  - add: { product: p, quantity: 1 }
  - submit: { name: Ann, email: a@b.c, method: delivery }
    expect: { outcome: succeeded }
assertions:
  - type: trace_contains
    event: confirm order-1
  - type: final_state
    expect: { cart_count: 0 }
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], `expected outcome "succeeded", got "blocked"`)
	assert.Contains(t, result.Errors[1], "trace_contains")
	assert.Contains(t, result.Errors[2], "cart_count=1 (want 0)")
}

func TestRun_DefaultTokens(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: tokens
description: default tokens are tok-N
catalog:
  - { id: p, title: P, price: "5.00", category: digital }
steps:
  - add: { product: p, quantity: 1 }
  - submit: { name: Ann, email: a@b.c }
assertions:
  - type: trace_contains
    event: create_order tok-1
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Isolated(t *testing.T) {
	first := runFile(t, "testdata/scenarios/delivered_prints_checkout.yaml")
	second := runFile(t, "testdata/scenarios/delivered_prints_checkout.yaml")

	assert.Equal(t, first.Trace, second.Trace)
}
