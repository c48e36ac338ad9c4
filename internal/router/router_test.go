package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinpoint-db/pinpoint/internal/catalog"
	"github.com/pinpoint-db/pinpoint/internal/store"
	"github.com/pinpoint-db/pinpoint/internal/sym"
	"github.com/pinpoint-db/pinpoint/internal/testutil"
)

func testRouter(t *testing.T) (*Router, *store.Store) {
	t.Helper()
	st := testutil.OpenStore(t)

	r := New(st)
	r.Tokens = NewFixedGenerator("plan-1", "plan-2", "plan-3", "plan-4")
	return r, st
}

func pkTable() *catalog.Table {
	return testutil.UsersTable()
}

func partitionedTable() *catalog.Table {
	return testutil.OrdersTable()
}

func TestRoute_DirectByPrimaryKey(t *testing.T) {
	r, _ := testRouter(t)

	pred := sym.Or(
		sym.Eq(sym.Column("id"), sym.Int(1)),
		sym.Eq(sym.Column("id"), sym.Int(2)),
	)

	plan, err := r.Route(context.Background(), pkTable(), pred)
	require.NoError(t, err)

	assert.Equal(t, "plan-1", plan.Token)
	assert.Equal(t, RouteDirect, plan.Kind)
	require.Len(t, plan.Targets, 2)
	for _, target := range plan.Targets {
		assert.Equal(t, sym.MustTupleIdent(target.Values), target.Ident)
		assert.GreaterOrEqual(t, target.Shard, 0)
		assert.Less(t, target.Shard, 4)
	}
	assert.Nil(t, plan.Residual)
}

func TestRoute_DirectShardIsStable(t *testing.T) {
	r, _ := testRouter(t)
	pred := sym.Eq(sym.Column("id"), sym.Int(1))

	first, err := r.Route(context.Background(), pkTable(), pred)
	require.NoError(t, err)
	second, err := r.Route(context.Background(), pkTable(), pred)
	require.NoError(t, err)

	require.Len(t, first.Targets, 1)
	require.Len(t, second.Targets, 1)
	assert.Equal(t, first.Targets[0].Shard, second.Targets[0].Shard)
	assert.Equal(t, first.Targets[0].Ident, second.Targets[0].Ident)
}

func TestRoute_ContradictionRoutesNothing(t *testing.T) {
	r, _ := testRouter(t)

	pred := sym.And(
		sym.Eq(sym.Column("id"), sym.Int(1)),
		sym.Eq(sym.Column("id"), sym.Int(2)),
	)

	plan, err := r.Route(context.Background(), pkTable(), pred)
	require.NoError(t, err)

	assert.Equal(t, RouteNothing, plan.Kind)
	assert.Empty(t, plan.Targets)
}

func TestRoute_PartitionPruning(t *testing.T) {
	r, st := testRouter(t)
	ctx := context.Background()

	testutil.RegisterRegions(t, st, "eu", "us", "ap")

	pred := sym.Or(
		sym.Eq(sym.Column("region"), sym.String("eu")),
		sym.Eq(sym.Column("region"), sym.String("us")),
	)

	plan, err := r.Route(ctx, partitionedTable(), pred)
	require.NoError(t, err)

	assert.Equal(t, RoutePartitions, plan.Kind)
	require.Len(t, plan.Targets, 2)
	for _, target := range plan.Targets {
		assert.Equal(t, 2, target.Shards)
	}
	// Exact narrowing needs no re-check
	assert.Nil(t, plan.Residual)
}

func TestRoute_UnregisteredPartitionsRouteNothing(t *testing.T) {
	r, st := testRouter(t)
	ctx := context.Background()

	testutil.RegisterRegions(t, st, "eu")

	pred := sym.Eq(sym.Column("region"), sym.String("mars"))

	plan, err := r.Route(ctx, partitionedTable(), pred)
	require.NoError(t, err)

	assert.Equal(t, RouteNothing, plan.Kind)
}

func TestRoute_ParentModeAttachesResidual(t *testing.T) {
	r, st := testRouter(t)
	ctx := context.Background()

	testutil.RegisterRegions(t, st, "eu")

	// The amount comparison blocks exact extraction over region but is
	// tolerated in parent mode
	pred := sym.And(
		sym.Eq(sym.Column("region"), sym.String("eu")),
		sym.Function{
			Name: "gt",
			Args: []sym.Symbol{
				sym.Reference{Col: sym.Column("amount"), Type: sym.TypeInt},
				sym.Literal{Val: sym.Int(100), Type: sym.TypeInt},
			},
			Type: sym.TypeBool,
		},
	)

	plan, err := r.Route(ctx, partitionedTable(), pred)
	require.NoError(t, err)

	assert.Equal(t, RoutePartitions, plan.Kind)
	require.Len(t, plan.Targets, 1)
	require.NotNil(t, plan.Residual)
	assert.Equal(t, "(region = ?) AND (amount > ?)", plan.Residual.SQL)
	assert.Equal(t, []any{"eu", int64(100)}, plan.Residual.Params)
}

func TestRoute_BroadcastWhenUnanalyzable(t *testing.T) {
	r, st := testRouter(t)
	ctx := context.Background()

	testutil.RegisterRegions(t, st, "eu")

	// A disjunct with no partition constraint defeats pruning entirely
	pred := sym.Or(
		sym.Eq(sym.Column("region"), sym.String("eu")),
		sym.Match{Col: sym.Column("notes"), Query: "urgent"},
	)

	plan, err := r.Route(ctx, partitionedTable(), pred)
	require.NoError(t, err)

	assert.Equal(t, RouteBroadcast, plan.Kind)
	assert.Empty(t, plan.Targets)
}

func TestRoute_PrimaryKeyBeatsPartitions(t *testing.T) {
	r, st := testRouter(t)
	ctx := context.Background()

	table := &catalog.Table{
		Name: "orders",
		Columns: map[string]sym.Type{
			"id":     sym.TypeInt,
			"region": sym.TypeString,
		},
		PrimaryKey:    []string{"id"},
		PartitionedBy: []string{"region"},
		Shards:        4,
	}
	_, err := st.RegisterPartition(ctx, "orders", []sym.Value{sym.String("eu")}, 4)
	require.NoError(t, err)

	pred := sym.And(
		sym.Eq(sym.Column("id"), sym.Int(7)),
		sym.Eq(sym.Column("region"), sym.String("eu")),
	)

	plan, err := r.Route(ctx, table, pred)
	require.NoError(t, err)

	assert.Equal(t, RouteDirect, plan.Kind)
	require.Len(t, plan.Targets, 1)
	assert.Equal(t, []sym.Value{sym.Int(7)}, plan.Targets[0].Values)
	// The region conjunct blocks exact extraction over id, so the direct
	// narrowing is parent-mode and shards must re-check the predicate
	require.NotNil(t, plan.Residual)
	assert.Equal(t, "(id = ?) AND (region = ?)", plan.Residual.SQL)
	assert.Equal(t, []any{int64(7), "eu"}, plan.Residual.Params)
}

func TestRoute_NegatedPartitionBroadcasts(t *testing.T) {
	r, st := testRouter(t)
	ctx := context.Background()

	testutil.RegisterRegions(t, st, "eu", "us")

	// Rows outside the named partition can still match: a negated
	// equality yields zero candidate tuples in parent mode, which means
	// no narrowing was found, not that nothing matches
	pred := sym.And(
		sym.Not(sym.Eq(sym.Column("region"), sym.String("eu"))),
		sym.Function{
			Name: "gt",
			Args: []sym.Symbol{
				sym.Reference{Col: sym.Column("amount"), Type: sym.TypeInt},
				sym.Literal{Val: sym.Int(100), Type: sym.TypeInt},
			},
			Type: sym.TypeBool,
		},
	)

	plan, err := r.Route(ctx, partitionedTable(), pred)
	require.NoError(t, err)

	assert.NotEqual(t, RouteNothing, plan.Kind)
	assert.Equal(t, RouteBroadcast, plan.Kind)
	assert.Empty(t, plan.Targets)
}

func TestRoute_NegatedPrimaryKeyBroadcasts(t *testing.T) {
	r, _ := testRouter(t)

	pred := sym.And(
		sym.Not(sym.Eq(sym.Column("id"), sym.Int(7))),
		sym.Eq(sym.Column("name"), sym.String("ada")),
	)

	plan, err := r.Route(context.Background(), pkTable(), pred)
	require.NoError(t, err)

	assert.Equal(t, RouteBroadcast, plan.Kind)
}

func TestRoute_NoMetadataBroadcasts(t *testing.T) {
	r, _ := testRouter(t)

	table := &catalog.Table{
		Name:    "logs",
		Columns: map[string]sym.Type{"msg": sym.TypeString},
		Shards:  2,
	}

	plan, err := r.Route(context.Background(), table, sym.Eq(sym.Column("msg"), sym.String("x")))
	require.NoError(t, err)

	assert.Equal(t, RouteBroadcast, plan.Kind)
}

func TestRoute_NilTable(t *testing.T) {
	r, _ := testRouter(t)

	_, err := r.Route(context.Background(), nil, sym.BoolTrue)
	assert.Error(t, err)
}

func TestDocShard(t *testing.T) {
	ident := sym.MustTupleIdent([]sym.Value{sym.Int(1)})

	shard, err := docShard(ident, 4)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, shard, 0)
	assert.Less(t, shard, 4)

	// Single shard always maps to 0
	shard, err = docShard(ident, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, shard)

	_, err = docShard(ident, 0)
	assert.Error(t, err)

	_, err = docShard("short", 4)
	assert.Error(t, err)
}
