// Package catalog compiles table metadata from CUE specs.
//
// A catalog tells the router which columns carry routing information for
// each table: the primary-key columns (direct row addressing), the
// partition columns (partition pruning), and the shard count (hash
// routing within a table or partition).
//
// Spec format:
//
//	table: orders: {
//	    columns: {
//	        id:     "string"
//	        region: "string"
//	        tenant: "int"
//	        body:   "string"
//	    }
//	    primary_key:    ["id"]
//	    partitioned_by: ["region"]
//	    shards:         4
//	}
//
// Compilation uses the CUE SDK's Go API directly (not a CLI subprocess)
// and reports positions on errors so a misdeclared spec points at the
// offending line.
package catalog
