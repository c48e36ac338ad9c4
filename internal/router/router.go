package router

import (
	"context"
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/catalog"
	"github.com/pinpoint-db/pinpoint/internal/extract"
	"github.com/pinpoint-db/pinpoint/internal/residual"
	"github.com/pinpoint-db/pinpoint/internal/store"
	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// Router builds routing plans from predicates.
type Router struct {
	// Store resolves partition tuples to registered partitions. When nil,
	// partition narrowing is skipped and partitioned tables broadcast.
	Store *store.Store

	// Extractor performs tuple extraction. Defaults to extract.New().
	Extractor *extract.Extractor

	// Tokens generates plan tokens. Defaults to UUIDv7Generator.
	Tokens TokenGenerator
}

// New creates a Router over the given partition store.
func New(st *store.Store) *Router {
	return &Router{
		Store:     st,
		Extractor: extract.New(),
		Tokens:    UUIDv7Generator{},
	}
}

// Route plans the execution of a query against one table.
//
// Narrowing is attempted strongest-first: primary-key tuples, then
// partition pruning, then broadcast. Each narrowing step tries exact mode
// first and falls back to parent mode; parent-mode plans carry the
// residual re-check. A proven contradiction short-circuits to
// RouteNothing.
func (r *Router) Route(ctx context.Context, table *catalog.Table, predicate sym.Symbol) (Plan, error) {
	if table == nil {
		return Plan{}, fmt.Errorf("route: nil table")
	}

	plan := Plan{
		Token: r.Tokens.Generate(),
		Table: table.Name,
		Kind:  RouteBroadcast,
	}

	if len(table.PrimaryKey) > 0 {
		done, err := r.routeByPrimaryKey(table, predicate, &plan)
		if err != nil {
			return Plan{}, fmt.Errorf("route %s: %w", table.Name, err)
		}
		if done {
			return plan, nil
		}
	}

	if len(table.PartitionedBy) > 0 && r.Store != nil {
		done, err := r.routeByPartitions(ctx, table, predicate, &plan)
		if err != nil {
			return Plan{}, fmt.Errorf("route %s: %w", table.Name, err)
		}
		if done {
			return plan, nil
		}
	}

	return plan, nil
}

// routeByPrimaryKey attempts direct routing from primary-key tuples, exact
// mode first, parent mode as fallback. Parent-mode tuples are necessary, so
// direct doc-key routing stays sound; those plans carry the residual
// re-check. Reports whether the plan was decided.
func (r *Router) routeByPrimaryKey(table *catalog.Table, predicate sym.Symbol, plan *Plan) (bool, error) {
	cols := table.PrimaryKeyIdents()

	rows, ok, err := r.Extractor.ExactMatches(cols, predicate)
	if err != nil {
		return false, err
	}
	exact := true
	if !ok {
		rows, ok, err = r.Extractor.ParentMatches(cols, predicate)
		if err != nil {
			return false, err
		}
		exact = false
	}
	if !ok {
		return false, nil
	}

	if len(rows) == 0 {
		// Only an exact empty result proves unsatisfiability. A parent-mode
		// empty result means no narrowing was found.
		if !exact {
			return false, nil
		}
		plan.Kind = RouteNothing
		return true, nil
	}

	targets := make([]Target, 0, len(rows))
	for _, row := range rows {
		ident, err := sym.TupleIdent(row)
		if err != nil {
			return false, err
		}
		shard, err := docShard(ident, table.Shards)
		if err != nil {
			return false, err
		}
		targets = append(targets, Target{Ident: ident, Values: row, Shard: shard})
	}

	plan.Kind = RouteDirect
	plan.Targets = targets
	if !exact {
		frag, err := residual.Compile(predicate)
		if err != nil {
			return false, err
		}
		plan.Residual = &frag
	}
	return true, nil
}

// routeByPartitions attempts partition pruning, exact mode first, parent
// mode as fallback. Parent-mode plans carry the residual re-check.
// Reports whether the plan was decided.
func (r *Router) routeByPartitions(ctx context.Context, table *catalog.Table, predicate sym.Symbol, plan *Plan) (bool, error) {
	cols := table.PartitionIdents()

	rows, ok, err := r.Extractor.ExactMatches(cols, predicate)
	if err != nil {
		return false, err
	}
	exact := true
	if !ok {
		rows, ok, err = r.Extractor.ParentMatches(cols, predicate)
		if err != nil {
			return false, err
		}
		exact = false
	}
	if !ok {
		return false, nil
	}

	if len(rows) == 0 {
		// Only an exact empty result proves unsatisfiability. A parent-mode
		// empty result means no narrowing was found.
		if !exact {
			return false, nil
		}
		plan.Kind = RouteNothing
		return true, nil
	}

	targets := make([]Target, 0, len(rows))
	for _, row := range rows {
		p, found, err := r.Store.ResolvePartition(ctx, table.Name, row)
		if err != nil {
			return false, err
		}
		if !found {
			// Tuple names a partition that was never registered: no
			// rows can live there
			continue
		}
		targets = append(targets, Target{
			Ident:  p.Ident,
			Values: p.Values,
			Shards: p.Shards,
		})
	}

	if len(targets) == 0 {
		plan.Kind = RouteNothing
		return true, nil
	}

	plan.Kind = RoutePartitions
	plan.Targets = targets
	if !exact {
		frag, err := residual.Compile(predicate)
		if err != nil {
			return false, err
		}
		plan.Residual = &frag
	}
	return true, nil
}
