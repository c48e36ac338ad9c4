package extract

import (
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// comparison is the per-target-column candidate set: the distinct equality
// proxies discovered for that column, in discovery order, deduplicated by
// structural identity of the wrapped function (two occurrences of `col = 1`
// collapse onto one proxy).
type comparison struct {
	byHash  map[string]int // structural hash -> index into proxies
	proxies []sym.Proxy
}

// add returns the proxy for an equality, creating one on first sight.
func (c *comparison) add(eq sym.Function, id int) (sym.Proxy, bool, error) {
	h, err := sym.Hash(eq)
	if err != nil {
		return sym.Proxy{}, false, fmt.Errorf("hash equality: %w", err)
	}
	if idx, ok := c.byHash[h]; ok {
		return c.proxies[idx], false, nil
	}
	p := sym.Proxy{ID: id, Origin: eq}
	c.byHash[h] = len(c.proxies)
	c.proxies = append(c.proxies, p)
	return p, true, nil
}

// Extraction is the outcome of the collect pass over one predicate: the
// rewritten tree plus the per-column candidate sets and the flags the
// enumerator needs. It is created fresh for one extraction call, consumed by
// Enumerate, and never retained.
type Extraction struct {
	// Columns is the caller's target columns, in the caller's order.
	// Result tuples align with this order.
	Columns []sym.ColumnIdent

	// Rewritten is the predicate with discovered equalities replaced by
	// proxies and unconstraining boolean subtrees collapsed to TRUE.
	Rewritten sym.Symbol

	// Exact records the extraction mode.
	Exact bool

	// SeenUnknown records that the collector met a construct it cannot
	// analyze (a non-target column, a match predicate). In exact mode this
	// poisons the call.
	SeenUnknown bool

	comparisons map[sym.ColumnIdent]*comparison
	proxyCount  int
}

// CandidateOrigins returns the discovered equalities for a column, in
// discovery order. Diagnostic surface for the explain command.
func (x *Extraction) CandidateOrigins(col sym.ColumnIdent) []sym.Function {
	c, ok := x.comparisons[col]
	if !ok {
		return nil
	}
	origins := make([]sym.Function, len(c.proxies))
	for i, p := range c.proxies {
		origins[i] = p.Origin
	}
	return origins
}

// collector runs the rewrite pass. proxyBelow is transient bookkeeping:
// while rewriting it marks whether the current subtree contains a proxy,
// which decides whether a boolean node may collapse to TRUE.
type collector struct {
	x          *Extraction
	proxyBelow bool
}

// Collect walks the predicate bottom-up and produces the Extraction for one
// call. The input tree is never mutated; the rewritten tree shares
// unchanged subtrees with it.
func Collect(columns []sym.ColumnIdent, predicate sym.Symbol, exact bool) (*Extraction, error) {
	x := &Extraction{
		Columns:     columns,
		Exact:       exact,
		comparisons: make(map[sym.ColumnIdent]*comparison, len(columns)),
	}
	for _, col := range columns {
		x.comparisons[col] = &comparison{byHash: make(map[string]int)}
	}

	c := &collector{x: x}
	rewritten, err := c.rewrite(predicate)
	if err != nil {
		return nil, err
	}
	x.Rewritten = rewritten
	return x, nil
}

func (c *collector) rewrite(s sym.Symbol) (sym.Symbol, error) {
	switch node := s.(type) {
	case nil:
		return nil, fmt.Errorf("malformed predicate: nil symbol")

	case sym.Literal:
		return node, nil

	case sym.Reference:
		// A reference surviving to here is not consumed by a target
		// equality; if it names a non-target column the predicate depends
		// on state we cannot hypothesize about.
		if _, ok := c.x.comparisons[node.Col]; !ok {
			c.x.SeenUnknown = true
		}
		return node, nil

	case sym.Match:
		// Full-text match is never analyzable for routing. Degrade to
		// no-pruning: mark unknown, collapse to TRUE.
		c.x.SeenUnknown = true
		return sym.BoolTrue, nil

	case sym.Proxy:
		// Proxies are extraction-internal; one in the input means the
		// caller handed us an already-rewritten tree.
		return nil, fmt.Errorf("malformed predicate: proxy node in input")

	case sym.Function:
		return c.rewriteFunction(node)

	default:
		return nil, fmt.Errorf("malformed predicate: unknown symbol type %T", s)
	}
}

func (c *collector) rewriteFunction(f sym.Function) (sym.Symbol, error) {
	// Function(eq, [Reference(target), Literal]) becomes a proxy. The
	// reference and literal are consumed here and never visited, so a
	// target equality does not trip the unknown-reference rule above.
	if eq, col, ok := targetEquality(f, c.x.comparisons); ok {
		proxy, fresh, err := c.x.comparisons[col].add(eq, c.x.proxyCount)
		if err != nil {
			return nil, err
		}
		if fresh {
			c.x.proxyCount++
		}
		c.proxyBelow = true
		return proxy, nil
	}

	// Generic boolean/arithmetic function: rewrite each argument with the
	// parent's proxyBelow restored, accumulating whether any argument
	// produced a proxy.
	pre := c.proxyBelow
	post := pre
	args := make([]sym.Symbol, len(f.Args))
	for i, arg := range f.Args {
		c.proxyBelow = pre
		rewritten, err := c.rewrite(arg)
		if err != nil {
			return nil, err
		}
		args[i] = rewritten
		post = post || c.proxyBelow
	}
	c.proxyBelow = post

	// A boolean subtree with no proxy anywhere below imposes no constraint
	// on target columns and cannot by itself prevent a witnessing row from
	// existing; collapse it. Pruning-only heuristic - see package doc.
	if !c.proxyBelow && f.Type == sym.TypeBool {
		return sym.BoolTrue, nil
	}
	return sym.Function{Name: f.Name, Args: args, Type: f.Type}, nil
}

// targetEquality recognizes Function(eq, [Reference(target), Literal]).
func targetEquality(f sym.Function, comparisons map[sym.ColumnIdent]*comparison) (sym.Function, sym.ColumnIdent, bool) {
	if f.Name != sym.OpEq || len(f.Args) != 2 {
		return sym.Function{}, sym.ColumnIdent{}, false
	}
	ref, ok := f.Args[0].(sym.Reference)
	if !ok {
		return sym.Function{}, sym.ColumnIdent{}, false
	}
	if _, ok := f.Args[1].(sym.Literal); !ok {
		return sym.Function{}, sym.ColumnIdent{}, false
	}
	if _, ok := comparisons[ref.Col]; !ok {
		return sym.Function{}, sym.ColumnIdent{}, false
	}
	return f, ref.Col, true
}
