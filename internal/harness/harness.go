package harness

import (
	"context"
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/catalog"
	"github.com/pinpoint-db/pinpoint/internal/predicate"
	"github.com/pinpoint-db/pinpoint/internal/router"
	"github.com/pinpoint-db/pinpoint/internal/store"
	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// PlanEvent records the routing outcome for one scenario query.
type PlanEvent struct {
	Token     string
	Table     string
	Predicate string
	Kind      string
	Targets   []TargetEvent
	Residual  string
}

// TargetEvent is one plan target, stripped of content addresses so scenario
// snapshots stay hand-writable.
type TargetEvent struct {
	Values []sym.Value
	Shards int
}

// Result is the outcome of running a scenario.
type Result struct {
	ScenarioName string
	Plans        []PlanEvent
	Failures     []string
}

// OK reports whether every expectation held.
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario: load the catalog, build the partition map in a
// throwaway database, route every query, and check expectations.
//
// Expectation failures land in Result.Failures; Run returns an error only
// for scenario-level problems (bad specs, unparsable predicate, storage).
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	loadResult, loadErrors := catalog.Load(scenario.Specs, catalog.LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, fmt.Errorf("loading specs: %w", loadErrors[0])
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening scratch partition map: %w", err)
	}
	defer st.Close()

	for i, step := range scenario.Partitions {
		values, err := convertTuple(step.Values)
		if err != nil {
			return nil, fmt.Errorf("partitions[%d]: %w", i, err)
		}
		if _, err := st.RegisterPartition(ctx, step.Table, values, step.Shards); err != nil {
			return nil, fmt.Errorf("partitions[%d]: %w", i, err)
		}
	}

	r := router.New(st)
	r.Tokens = router.NewFixedGenerator(planTokens(len(scenario.Queries))...)

	result := &Result{ScenarioName: scenario.Name}
	for i, step := range scenario.Queries {
		tbl, err := loadResult.Catalog.Lookup(step.Table)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		pred, err := predicate.Parse(step.Predicate)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: parsing %q: %w", i, step.Predicate, err)
		}

		plan, err := r.Route(ctx, tbl, pred)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: routing: %w", i, err)
		}

		event := planEvent(step, plan)
		result.Plans = append(result.Plans, event)
		checkExpectation(result, i, step.Expect, plan)
	}

	return result, nil
}

// planTokens produces a deterministic token sequence for one run.
func planTokens(n int) []string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("plan-%04d", i+1)
	}
	return tokens
}

func planEvent(step QueryStep, plan router.Plan) PlanEvent {
	event := PlanEvent{
		Token:     plan.Token,
		Table:     plan.Table,
		Predicate: step.Predicate,
		Kind:      plan.Kind.String(),
	}
	for _, target := range plan.Targets {
		event.Targets = append(event.Targets, TargetEvent{
			Values: target.Values,
			Shards: target.Shards,
		})
	}
	if plan.Residual != nil {
		event.Residual = plan.Residual.SQL
	}
	return event
}

func checkExpectation(result *Result, index int, expect *ExpectClause, plan router.Plan) {
	if expect == nil {
		return
	}

	if got := plan.Kind.String(); got != expect.Kind {
		result.Failures = append(result.Failures,
			fmt.Sprintf("queries[%d]: kind = %s, want %s", index, got, expect.Kind))
	}
	if expect.Targets != nil && len(plan.Targets) != *expect.Targets {
		result.Failures = append(result.Failures,
			fmt.Sprintf("queries[%d]: %d target(s), want %d", index, len(plan.Targets), *expect.Targets))
	}
	if expect.Residual && plan.Residual == nil {
		result.Failures = append(result.Failures,
			fmt.Sprintf("queries[%d]: expected a residual re-check", index))
	}
	if !expect.Residual && plan.Residual != nil {
		result.Failures = append(result.Failures,
			fmt.Sprintf("queries[%d]: unexpected residual re-check", index))
	}
}

// convertTuple converts YAML-decoded values to routing values.
func convertTuple(raw []interface{}) ([]sym.Value, error) {
	values := make([]sym.Value, len(raw))
	for i, v := range raw {
		sv, err := convertValue(v)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		values[i] = sv
	}
	return values, nil
}

// convertValue maps one YAML-decoded value to a sym.Value.
// Floats are rejected, same as everywhere else in the routing path.
func convertValue(v interface{}) (sym.Value, error) {
	switch val := v.(type) {
	case nil:
		return sym.Null{}, nil
	case bool:
		return sym.Bool(val), nil
	case string:
		return sym.String(val), nil
	case int:
		return sym.Int(val), nil
	case int64:
		return sym.Int(val), nil
	case float64:
		return nil, fmt.Errorf("floats are forbidden in routing values: %v", val)
	case []interface{}:
		arr := make(sym.Array, len(val))
		for i, elem := range val {
			sv, err := convertValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = sv
		}
		return arr, nil
	case map[string]interface{}:
		obj := make(sym.Object, len(val))
		for k, elem := range val {
			sv, err := convertValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = sv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
