package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain_SingleEquality(t *testing.T) {
	stdout, _, err := executeCommand("explain", "--targets", "a", "a = 1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "mode:      exact")
	assert.Contains(t, stdout, "extracted 1 tuple(s)")
	assert.Contains(t, stdout, "(1)")
}

func TestExplain_Disjunction(t *testing.T) {
	stdout, _, err := executeCommand("explain", "--targets", "a", "a = 1 OR a = 2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "extracted 2 tuple(s)")
	assert.Contains(t, stdout, "(1)")
	assert.Contains(t, stdout, "(2)")
}

func TestExplain_Contradiction(t *testing.T) {
	stdout, _, err := executeCommand("explain", "--targets", "a", "a = 1 AND a = 2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "unsatisfiable")
}

func TestExplain_UnknownColumnExactMode(t *testing.T) {
	stdout, _, err := executeCommand("explain", "--targets", "a", "a = 1 AND b = 2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "unanalyzable")
	assert.Contains(t, stdout, "no finite tuple set")
}

func TestExplain_UnknownColumnParentMode(t *testing.T) {
	stdout, _, err := executeCommand("explain", "--targets", "a", "--mode", "parent", "a = 1 AND b = 2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "extracted 1 tuple(s)")
}

func TestExplain_JSONOutput(t *testing.T) {
	stdout, _, err := executeCommand("--format", "json", "explain", "--targets", "a,b", "a = 1 AND b = 2")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "ok", response.Status)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var result ExplainResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.True(t, result.Extracted)
	assert.Equal(t, [][]string{{"1", "2"}}, result.Tuples)
}

func TestExplain_InvalidMode(t *testing.T) {
	_, _, err := executeCommand("explain", "--targets", "a", "--mode", "fuzzy", "a = 1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExplain_ParseError(t *testing.T) {
	_, _, err := executeCommand("explain", "--targets", "a", "a = ")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExplain_EmptyTargets(t *testing.T) {
	_, _, err := executeCommand("explain", "--targets", " , ", "a = 1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
