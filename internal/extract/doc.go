// Package extract derives routing values from WHERE-clause predicates.
//
// Given a predicate tree and an ordered list of target columns (partition
// columns, primary-key columns, or shard-routing columns), extraction
// computes the finite set of concrete value tuples that are necessary for
// the predicate to be satisfiable. The router uses those tuples to address
// specific partitions or rows instead of broadcasting a full scan.
//
// EXTRACTION PIPELINE:
//
//	[predicate tree] → [Collect] → [Enumerate] → [value tuples]
//
// Collect is a rewrite pass: each equality between a target column and a
// literal becomes an immutable Proxy node, and boolean subtrees that
// constrain no target column collapse to TRUE.
//
// Enumerate forms the cartesian product over per-column candidate sets; each
// combination is tested by materializing the rewritten tree (chosen proxies
// become TRUE, the rest revert to their origin) and asking the normalizer
// whether it folds to constant TRUE. Winning combinations become value
// tuples in target-column order.
//
// MODES:
//
// Exact mode guarantees the returned tuples are both necessary and
// sufficient: any unanalyzable construct (a non-target column, a match
// predicate) poisons the call and extraction reports no result. Parent mode
// guarantees only necessity - a safe superset used to narrow candidates
// before a per-row re-check - so unanalyzable constructs are tolerated.
//
// SOUNDNESS:
//
// The collapse-to-true rewrite is sound only for the question extraction
// asks: "could some row satisfy this predicate?". A boolean subtree that
// imposes no constraint on target columns cannot by itself prevent a
// witnessing row from existing, so replacing it with TRUE preserves
// satisfiability under hypothesized column bindings. The same rewrite would
// be unsound for "does this predicate always hold" questions; do not reuse
// it for other callers.
//
// A combination that wins with the NULL marker (or with a NULL literal as
// the witnessed value) proves the predicate can hold without pinning the
// column to a real value; in that case no finite tuple set is a sound
// answer and the whole call reports no result.
//
// Extraction state lives for exactly one call and is never shared: the
// package is safe for concurrent use, one extraction per goroutine.
package extract
