package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinpoint-db/pinpoint/internal/store"
	"github.com/pinpoint-db/pinpoint/internal/sym"
)

const testSpecs = `
table: users: {
	columns: {
		id:   "int"
		name: "string"
	}
	primary_key: ["id"]
	shards: 4
}

table: orders: {
	columns: {
		region: "string"
		amount: "int"
	}
	partitioned_by: ["region"]
	shards: 2
}
`

// writeFixtures lays out a specs directory and a populated partition map.
func writeFixtures(t *testing.T) (specsDir, dbPath string) {
	t.Helper()
	dir := t.TempDir()

	specsDir = filepath.Join(dir, "specs")
	require.NoError(t, os.Mkdir(specsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(specsDir, "tables.cue"), []byte(testSpecs), 0o644))

	dbPath = filepath.Join(dir, "partitions.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, region := range []string{"eu", "us"} {
		_, err := st.RegisterPartition(ctx, "orders", []sym.Value{sym.String(region)}, 2)
		require.NoError(t, err)
	}
	return specsDir, dbPath
}

func TestRoute_Direct(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	stdout, _, err := executeCommand("route",
		"--specs", specsDir, "--db", dbPath, "--table", "users",
		"id = 7")
	require.NoError(t, err)

	assert.Contains(t, stdout, "route: direct")
	assert.Contains(t, stdout, "shard ")
}

func TestRoute_Partitions(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	stdout, _, err := executeCommand("route",
		"--specs", specsDir, "--db", dbPath, "--table", "orders",
		"region = 'eu' OR region = 'us'")
	require.NoError(t, err)

	assert.Contains(t, stdout, "route: partitions")
	assert.Contains(t, stdout, `"eu"`)
	assert.Contains(t, stdout, `"us"`)
}

func TestRoute_NothingForUnregisteredPartition(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	stdout, _, err := executeCommand("route",
		"--specs", specsDir, "--db", dbPath, "--table", "orders",
		"region = 'mars'")
	require.NoError(t, err)

	assert.Contains(t, stdout, "route: nothing")
}

func TestRoute_NothingForContradiction(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	stdout, _, err := executeCommand("route",
		"--specs", specsDir, "--db", dbPath, "--table", "users",
		"id = 1 AND id = 2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "route: nothing")
	assert.Contains(t, stdout, "unsatisfiable")
}

func TestRoute_ResidualForParentNarrowing(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	stdout, _, err := executeCommand("route",
		"--specs", specsDir, "--db", dbPath, "--table", "orders",
		"region = 'eu' AND amount > 100")
	require.NoError(t, err)

	assert.Contains(t, stdout, "route: partitions")
	assert.Contains(t, stdout, "residual: (region = ?) AND (amount > ?)")
}

func TestRoute_Broadcast(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	stdout, _, err := executeCommand("route",
		"--specs", specsDir, "--db", dbPath, "--table", "orders",
		"region = 'eu' OR MATCH(notes, 'urgent')")
	require.NoError(t, err)

	assert.Contains(t, stdout, "route: broadcast")
}

func TestRoute_JSONOutput(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	stdout, _, err := executeCommand("--format", "json", "route",
		"--specs", specsDir, "--db", dbPath, "--table", "users",
		"id = 1 OR id = 2")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "ok", response.Status)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var result RouteResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "users", result.Table)
	assert.Equal(t, "direct", result.Kind)
	assert.Len(t, result.Targets, 2)
	assert.NotEmpty(t, result.Token)
}

func TestRoute_UnknownTable(t *testing.T) {
	specsDir, dbPath := writeFixtures(t)

	_, _, err := executeCommand("route",
		"--specs", specsDir, "--db", dbPath, "--table", "missing",
		"id = 1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoute_MissingSpecsDir(t *testing.T) {
	_, dbPath := writeFixtures(t)

	_, _, err := executeCommand("route",
		"--specs", filepath.Join(t.TempDir(), "nope"), "--db", dbPath, "--table", "users",
		"id = 1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
