package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_Scenarios(t *testing.T) {
	for _, name := range []string{
		"delivered_prints_checkout",
		"rejected_order_retry",
	} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Canonical(t *testing.T) {
	data, err := Snapshot("s", &Result{
		Trace: []string{"a", "b"},
		Final: FinalState{State: "idle", Subtotal: "0.00"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		`{"final":{"cart_count":0,"orders":0,"state":"idle","subtotal":"0.00"},"scenario_name":"s","trace":["a","b"]}`,
		string(data))
}
