package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenarioWithBasePath("testdata/scenarios/"+name+".yaml", "testdata/scenarios")
	require.NoError(t, err)
	return s
}

func TestRun_BasicRouting(t *testing.T) {
	result, err := Run(loadTestScenario(t, "basic-routing"))
	require.NoError(t, err)

	assert.True(t, result.OK(), "failures: %v", result.Failures)
	require.Len(t, result.Plans, 3)

	assert.Equal(t, "direct", result.Plans[0].Kind)
	require.Len(t, result.Plans[0].Targets, 1)
	assert.Equal(t, []sym.Value{sym.Int(7)}, result.Plans[0].Targets[0].Values)

	assert.Equal(t, "direct", result.Plans[1].Kind)
	assert.Len(t, result.Plans[1].Targets, 2)

	assert.Equal(t, "nothing", result.Plans[2].Kind)
	assert.Empty(t, result.Plans[2].Targets)
}

func TestRun_PartitionPruning(t *testing.T) {
	result, err := Run(loadTestScenario(t, "partition-pruning"))
	require.NoError(t, err)

	assert.True(t, result.OK(), "failures: %v", result.Failures)
	require.Len(t, result.Plans, 5)

	assert.Equal(t, "partitions", result.Plans[0].Kind)
	assert.Equal(t, 2, result.Plans[0].Targets[0].Shards)

	assert.Equal(t, "nothing", result.Plans[2].Kind)

	assert.Equal(t, "partitions", result.Plans[3].Kind)
	assert.Equal(t, "(region = ?) AND (amount > ?)", result.Plans[3].Residual)

	assert.Equal(t, "broadcast", result.Plans[4].Kind)
	assert.Empty(t, result.Plans[4].Residual)
}

func TestRun_DeterministicTokens(t *testing.T) {
	scenario := loadTestScenario(t, "basic-routing")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	for i := range first.Plans {
		assert.Equal(t, first.Plans[i].Token, second.Plans[i].Token)
	}
	assert.Equal(t, "plan-0001", first.Plans[0].Token)
}

func TestRun_ExpectationFailureIsRecorded(t *testing.T) {
	scenario := loadTestScenario(t, "basic-routing")
	// Sabotage one expectation
	scenario.Queries[0].Expect.Kind = "broadcast"

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.OK())
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "kind = direct, want broadcast")
}

func TestRun_UnknownTableIsAnError(t *testing.T) {
	scenario := loadTestScenario(t, "basic-routing")
	scenario.Queries[0].Table = "missing"

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")
}

func TestRun_UnparsablePredicateIsAnError(t *testing.T) {
	scenario := loadTestScenario(t, "basic-routing")
	scenario.Queries[0].Predicate = "id = "

	_, err := Run(scenario)
	require.Error(t, err)
}

func TestConvertValue(t *testing.T) {
	v, err := convertValue("eu")
	require.NoError(t, err)
	assert.Equal(t, sym.String("eu"), v)

	v, err = convertValue(42)
	require.NoError(t, err)
	assert.Equal(t, sym.Int(42), v)

	v, err = convertValue(nil)
	require.NoError(t, err)
	assert.True(t, sym.IsNull(v))

	v, err = convertValue([]interface{}{1, "a"})
	require.NoError(t, err)
	assert.Equal(t, sym.Array{sym.Int(1), sym.String("a")}, v)

	_, err = convertValue(1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}
