package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenarioWithBasePath("testdata/scenarios/partition-pruning.yaml", "testdata/scenarios")
	require.NoError(t, err)

	assert.Equal(t, "partition-pruning", s.Name)
	assert.NotEmpty(t, s.Description)
	assert.Len(t, s.Partitions, 2)
	assert.Len(t, s.Queries, 5)
	require.NotNil(t, s.Queries[3].Expect)
	assert.True(t, s.Queries[3].Expect.Residual)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenarioFile(t, `
name: typo
description: misfielded
specs: .
querys:
  - table: t
    predicate: "a = 1"
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingQueries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: empty
description: no queries
specs: .
queries: []
`), 0o644))

	_, err := LoadScenarioWithBasePath(path, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queries list is required")
}

func TestLoadScenario_MissingSpecsDir(t *testing.T) {
	path := writeScenarioFile(t, `
name: s
description: d
specs: does-not-exist
queries:
  - table: t
    predicate: "a = 1"
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specs directory not found")
}

func TestLoadScenario_BadExpectKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: s
description: d
specs: .
queries:
  - table: t
    predicate: "a = 1"
    expect:
      kind: everywhere
`), 0o644))

	_, err := LoadScenarioWithBasePath(path, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestLoadScenario_BadPartitionStep(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: s
description: d
specs: .
partitions:
  - table: orders
    values: ["eu"]
    shards: 0
queries:
  - table: t
    predicate: "a = 1"
`), 0o644))

	_, err := LoadScenarioWithBasePath(path, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shards must be at least 1")
}
