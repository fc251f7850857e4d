package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/storefront/internal/shop"
)

// TraceSnapshot is what golden files hold, as canonical JSON.
type TraceSnapshot struct {
	ScenarioName string     `json:"scenario_name"`
	Trace        []string   `json:"trace"`
	Final        FinalState `json:"final"`
}

// Snapshot builds the canonical JSON snapshot of a result.
func Snapshot(name string, result *Result) ([]byte, error) {
	return shop.MarshalCanonical(TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Final:        result.Final,
	})
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/<scenario.Name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
