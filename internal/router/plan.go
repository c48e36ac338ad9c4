package router

import (
	"fmt"
	"strconv"

	"github.com/pinpoint-db/pinpoint/internal/residual"
	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// Kind classifies a routing plan.
type Kind int

const (
	// RouteBroadcast sends the query to every shard. No pruning
	// information could be extracted.
	RouteBroadcast Kind = iota

	// RouteDirect routes to specific shards by primary-key document keys.
	RouteDirect

	// RoutePartitions restricts the query to a resolved partition set.
	RoutePartitions

	// RouteNothing proves the predicate unsatisfiable; no shard needs to
	// see the query.
	RouteNothing
)

func (k Kind) String() string {
	switch k {
	case RouteDirect:
		return "direct"
	case RoutePartitions:
		return "partitions"
	case RouteNothing:
		return "nothing"
	default:
		return "broadcast"
	}
}

// Target is one routing destination within a plan.
//
// For RouteDirect, Ident is the document key (content-addressed primary-key
// tuple) and Shard is its home shard. For RoutePartitions, Ident is the
// partition's tuple identity and Shards is the partition's shard count.
type Target struct {
	Ident  string
	Values []sym.Value
	Shard  int
	Shards int
}

// Plan is the routing decision for one query.
type Plan struct {
	// Token identifies the plan across logs and traces.
	Token string

	// Table is the routed table's name.
	Table string

	// Kind classifies the plan.
	Kind Kind

	// Targets lists routing destinations. Empty for RouteBroadcast and
	// RouteNothing.
	Targets []Target

	// Residual is the predicate fragment shards must re-check when the
	// narrowing was an over-approximation (parent mode). Nil when the
	// target set is exact.
	Residual *residual.Fragment
}

// docShard maps a document key to its home shard: the first 16 hex digits
// of the key interpreted as an unsigned integer, mod the shard count.
// The key is already a uniform SHA-256 digest, so the prefix is uniform too.
func docShard(ident string, shards int) (int, error) {
	if shards < 1 {
		return 0, fmt.Errorf("shard count %d, must be >= 1", shards)
	}
	if len(ident) < 16 {
		return 0, fmt.Errorf("document key %q too short", ident)
	}
	n, err := strconv.ParseUint(ident[:16], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("document key %q: %w", ident, err)
	}
	return int(n % uint64(shards)), nil
}
