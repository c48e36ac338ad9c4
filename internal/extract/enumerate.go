package extract

import (
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/normalize"
	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// DefaultMaxCombinations caps the cartesian product of per-column candidate
// sets. A column with an unbounded IN/OR chain multiplies enumeration work;
// past the cap extraction degrades to no-result instead of paying unbounded
// cost.
const DefaultMaxCombinations = 10000

// Extractor derives routing value tuples from predicates. The zero value is
// ready to use; New applies the defaults explicitly.
//
// Extractor holds no per-call state and is safe for concurrent use.
type Extractor struct {
	// MaxCombinations caps the total number of candidate combinations
	// examined per call. Zero means DefaultMaxCombinations.
	MaxCombinations int

	// Simplify is the normalizer driven by the enumeration loop. It must be
	// pure and referentially transparent: it is called once per candidate
	// combination and any hidden state would break idempotence.
	// Nil means normalize.Simplify.
	Simplify func(sym.Symbol) sym.Symbol
}

// New returns an Extractor with default settings.
func New() *Extractor {
	return &Extractor{
		MaxCombinations: DefaultMaxCombinations,
		Simplify:        normalize.Simplify,
	}
}

// ExactMatches returns the value tuples that are necessary AND sufficient
// for the predicate, aligned with columns. ok=false means no usable pruning
// information (the caller must fall back to a broadcast); ok=true with an
// empty slice means no value can satisfy the predicate at all.
//
// The call is idempotent: identical inputs yield identical output,
// including row order.
func (e *Extractor) ExactMatches(columns []sym.ColumnIdent, predicate sym.Symbol) ([][]sym.Value, bool, error) {
	return e.matches(columns, predicate, true)
}

// ParentMatches is ExactMatches with unanalyzable constructs tolerated: the
// returned tuples are necessary but not sufficient, a safe superset for
// narrowing candidates before a per-row re-check.
func (e *Extractor) ParentMatches(columns []sym.ColumnIdent, predicate sym.Symbol) ([][]sym.Value, bool, error) {
	return e.matches(columns, predicate, false)
}

func (e *Extractor) matches(columns []sym.ColumnIdent, predicate sym.Symbol, exact bool) ([][]sym.Value, bool, error) {
	x, err := Collect(columns, predicate, exact)
	if err != nil {
		return nil, false, err
	}
	return e.Enumerate(x)
}

// candidate is one entry in a column's candidate set: either a discovered
// proxy or the NULL marker. The NULL marker is a distinguished case, not a
// sentinel object - it represents "value unconstrained/unknown" and never
// carries a real value.
type candidate struct {
	proxy      sym.Proxy
	nullMarker bool
}

// Enumerate runs the combination phase over a collected extraction and
// assembles the result rows. See ExactMatches for the result contract.
func (e *Extractor) Enumerate(x *Extraction) ([][]sym.Value, bool, error) {
	if x.Exact && x.SeenUnknown {
		return nil, false, nil
	}
	if len(x.Columns) == 0 {
		// No target columns means nothing to route on.
		return nil, false, nil
	}

	simplify := e.Simplify
	if simplify == nil {
		simplify = normalize.Simplify
	}
	maxCombinations := e.MaxCombinations
	if maxCombinations <= 0 {
		maxCombinations = DefaultMaxCombinations
	}

	// Per-column candidate sets: discovered proxies in discovery order,
	// NULL marker last.
	sets := make([][]candidate, len(x.Columns))
	total := 1
	for i, col := range x.Columns {
		proxies := x.comparisons[col].proxies
		set := make([]candidate, 0, len(proxies)+1)
		for _, p := range proxies {
			set = append(set, candidate{proxy: p})
		}
		set = append(set, candidate{nullMarker: true})
		sets[i] = set

		if total > maxCombinations/len(set) {
			return nil, false, nil
		}
		total *= len(set)
	}

	// Mixed-radix counter over the candidate sets, last column varying
	// fastest: the iteration order is the outer product over column order.
	rows := [][]sym.Value{}
	indices := make([]int, len(sets))
	tuple := make([]candidate, len(sets))
	for {
		chosen := make(map[int]bool, len(sets))
		anyNull := false
		for i, idx := range indices {
			tuple[i] = sets[i][idx]
			if tuple[i].nullMarker {
				anyNull = true
			} else {
				chosen[tuple[i].proxy.ID] = true
			}
		}

		hypothesized, err := substitute(x.Rewritten, chosen)
		if err != nil {
			return nil, false, err
		}
		simplified := simplify(hypothesized)
		if simplified == nil {
			return nil, false, fmt.Errorf("normalizer returned nil symbol")
		}

		if sym.IsTrue(simplified) {
			if anyNull {
				// The predicate can hold while leaving a column
				// unconstrained; no finite tuple set is a sound answer.
				return nil, false, nil
			}
			row, err := assembleRow(tuple)
			if err != nil {
				return nil, false, err
			}
			if row == nil {
				// A NULL literal witnessed an equality; same soundness
				// problem as the marker.
				return nil, false, nil
			}
			rows = append(rows, row)
		}

		if !advance(indices, sets) {
			break
		}
	}

	return rows, true, nil
}

// advance increments the mixed-radix counter; false means exhausted.
func advance(indices []int, sets [][]candidate) bool {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < len(sets[i]) {
			return true
		}
		indices[i] = 0
	}
	return false
}

// substitute materializes the hypothesis for one combination: chosen proxies
// become the TRUE literal, all other proxies revert to their origin
// equality. The rewritten tree itself is shared and untouched, which is
// what makes combinations independently evaluable.
func substitute(s sym.Symbol, chosen map[int]bool) (sym.Symbol, error) {
	switch node := s.(type) {
	case sym.Proxy:
		if chosen[node.ID] {
			return sym.BoolTrue, nil
		}
		return node.Origin, nil
	case sym.Function:
		args := make([]sym.Symbol, len(node.Args))
		for i, arg := range node.Args {
			sub, err := substitute(arg, chosen)
			if err != nil {
				return nil, err
			}
			args[i] = sub
		}
		return sym.Function{Name: node.Name, Args: args, Type: node.Type}, nil
	case sym.Literal, sym.Reference, sym.Match:
		return node, nil
	default:
		return nil, fmt.Errorf("unknown symbol type %T in rewritten tree", s)
	}
}

// assembleRow converts a winning combination into a value tuple in
// target-column order. Returns nil (no error) when a witnessed value is
// NULL, which the caller treats as unsound.
func assembleRow(tuple []candidate) ([]sym.Value, error) {
	row := make([]sym.Value, len(tuple))
	for i, cand := range tuple {
		lit, ok := cand.proxy.Origin.Args[1].(sym.Literal)
		if !ok {
			return nil, fmt.Errorf("proxy origin is not a literal equality: %s", cand.proxy.Origin.String())
		}
		if sym.IsNull(lit.Val) {
			return nil, nil
		}
		row[i] = lit.Val
	}
	return row, nil
}
