package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// snapshot converts a Result to a canonical value for golden comparison.
// Tokens and content addresses are left out: the snapshot is the routing
// decision as a scenario author would state it.
func snapshot(result *Result) sym.Value {
	plans := make(sym.Array, len(result.Plans))
	for i, plan := range result.Plans {
		planObj := sym.Object{
			"table":     sym.String(plan.Table),
			"predicate": sym.String(plan.Predicate),
			"kind":      sym.String(plan.Kind),
		}
		if len(plan.Targets) > 0 {
			targets := make(sym.Array, len(plan.Targets))
			for j, target := range plan.Targets {
				values := make(sym.Array, len(target.Values))
				copy(values, target.Values)
				targetObj := sym.Object{"values": values}
				if target.Shards > 0 {
					targetObj["shards"] = sym.Int(target.Shards)
				}
				targets[j] = targetObj
			}
			planObj["targets"] = targets
		}
		if plan.Residual != "" {
			planObj["residual"] = sym.String(plan.Residual)
		}
		plans[i] = planObj
	}

	return sym.Object{
		"scenario": sym.String(result.ScenarioName),
		"plans":    plans,
	}
}

// RunWithGolden executes a scenario and compares its plan snapshot against
// the golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation failures inside the scenario fail the test too.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	for _, failure := range result.Failures {
		t.Errorf("%s: %s", scenario.Name, failure)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-computed Result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := sym.MarshalCanonical(snapshot(result))
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
