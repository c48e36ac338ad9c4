// Package residual compiles a predicate tree into a parameterized SQL
// fragment. Routing by extracted tuples is an over-approximation in parent
// mode: the chosen shards may hold rows the predicate rejects, so the full
// predicate still has to run there. This package produces that re-check
// fragment.
//
// Values are always bound as ? parameters, never interpolated into the SQL
// text.
package residual
