package store

import (
	"context"
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// Partition is one row of the partition map: a table's partition-column
// value tuple, its content-addressed identity, and the shard count backing
// that partition.
type Partition struct {
	Table  string
	Ident  string
	Values []sym.Value
	Shards int
}

// RegisterPartition inserts a partition row, computing the tuple identity
// from the values. Uses ON CONFLICT DO NOTHING for idempotency - registering
// the same tuple twice is silently ignored, even with a different shard
// count (the first registration wins; use DropPartition first to re-shard).
//
// Returns the stored partition row including its computed ident; on a
// conflict that is the earlier registration, not the caller's arguments.
func (s *Store) RegisterPartition(ctx context.Context, table string, values []sym.Value, shards int) (Partition, error) {
	if table == "" {
		return Partition{}, fmt.Errorf("register partition: table name is empty")
	}
	if shards < 1 {
		return Partition{}, fmt.Errorf("register partition: shard count %d, must be >= 1", shards)
	}

	ident, err := sym.TupleIdent(values)
	if err != nil {
		return Partition{}, fmt.Errorf("register partition: %w", err)
	}

	valuesJSON, err := marshalTuple(values)
	if err != nil {
		return Partition{}, fmt.Errorf("register partition: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO partitions (table_name, ident, values_json, shard_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(table_name, ident) DO NOTHING
	`, table, ident, valuesJSON, shards)
	if err != nil {
		return Partition{}, fmt.Errorf("register partition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Partition{}, fmt.Errorf("register partition: rows affected: %w", err)
	}
	if affected == 0 {
		// Conflict: report the stored row, whose shard count may differ
		// from the caller's
		stored, found, err := s.ResolvePartition(ctx, table, values)
		if err != nil {
			return Partition{}, fmt.Errorf("register partition: %w", err)
		}
		if !found {
			return Partition{}, fmt.Errorf("register partition: conflicting row vanished for %s/%s", table, ident)
		}
		return stored, nil
	}

	return Partition{Table: table, Ident: ident, Values: values, Shards: shards}, nil
}

// DropPartition deletes a partition row by its value tuple.
// Returns whether a row was actually deleted.
func (s *Store) DropPartition(ctx context.Context, table string, values []sym.Value) (bool, error) {
	ident, err := sym.TupleIdent(values)
	if err != nil {
		return false, fmt.Errorf("drop partition: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM partitions
		WHERE table_name = ? AND ident = ?
	`, table, ident)
	if err != nil {
		return false, fmt.Errorf("drop partition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("drop partition: rows affected: %w", err)
	}
	return affected > 0, nil
}
