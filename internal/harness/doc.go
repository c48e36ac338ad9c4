// Package harness runs routing conformance scenarios.
//
// A scenario is a YAML file naming a directory of CUE table specs, a set of
// partitions to register, and a list of queries to route. The harness loads
// the catalog, builds the partition map in a throwaway database, routes
// every query, and checks each plan against the scenario's expectations.
//
// Golden comparison works on a canonical snapshot of the plans. Snapshots
// deliberately omit content addresses and derived shard numbers; they record
// the routing decision (kind, tuples, shard counts, residual), which is what
// a scenario author can state up front.
package harness
