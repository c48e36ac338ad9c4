// Package router turns an extraction result into a routing plan.
//
// Given a table's catalog entry and a WHERE predicate, the router asks the
// extractor for the finite set of value tuples the predicate admits:
//
//   - primary-key tuples route directly to shards by the
//     content-addressed document key,
//   - partition-column tuples prune the partition set via the store,
//   - a proven contradiction routes nowhere,
//   - anything else broadcasts.
//
// Parent-mode narrowing is an over-approximation, so those plans carry a
// residual SQL fragment the shards re-check.
package router
