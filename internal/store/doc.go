// Package store provides durable storage for the partition map.
//
// The router resolves extracted value tuples against this map: a partition
// row records which concrete partition-column values exist for a table and
// how many shards back that partition. Partitions are keyed by the
// content-addressed identity of their value tuple (sym.TupleIdent), so
// resolution is a point lookup, never a scan over partition values.
//
// Uses SQLite with WAL mode for concurrent read access and a single writer.
// All list queries carry ORDER BY with a COLLATE BINARY tiebreaker so
// results are deterministic across SQLite versions.
package store
