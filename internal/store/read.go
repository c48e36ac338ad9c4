package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// ResolvePartition looks up a partition row by its value tuple.
// This is a point lookup on the content-addressed tuple identity.
// Returns found=false (not an error) when no such partition exists -
// an unknown tuple is an expected routing outcome, not a failure.
func (s *Store) ResolvePartition(ctx context.Context, table string, values []sym.Value) (Partition, bool, error) {
	ident, err := sym.TupleIdent(values)
	if err != nil {
		return Partition{}, false, fmt.Errorf("resolve partition: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT table_name, ident, values_json, shard_count
		FROM partitions
		WHERE table_name = ? AND ident = ?
	`, table, ident)

	p, err := scanPartition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Partition{}, false, nil
	}
	if err != nil {
		return Partition{}, false, fmt.Errorf("resolve partition: %w", err)
	}
	return p, true, nil
}

// ListPartitions returns all partition rows for a table.
// Ordered by ident COLLATE BINARY so results are deterministic.
//
// Returns an empty slice (not nil) if the table has no partitions.
func (s *Store) ListPartitions(ctx context.Context, table string) ([]Partition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, ident, values_json, shard_count
		FROM partitions
		WHERE table_name = ?
		ORDER BY ident COLLATE BINARY ASC
	`, table)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	defer rows.Close()

	var partitions []Partition
	for rows.Next() {
		p, err := scanPartition(rows)
		if err != nil {
			return nil, fmt.Errorf("list partitions: %w", err)
		}
		partitions = append(partitions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list partitions: iterate: %w", err)
	}

	if partitions == nil {
		partitions = []Partition{}
	}
	return partitions, nil
}

// Tables returns the distinct table names with registered partitions,
// ordered deterministically.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT table_name
		FROM partitions
		ORDER BY table_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: iterate: %w", err)
	}

	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

// CountPartitions returns the number of partition rows for a table.
func (s *Store) CountPartitions(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM partitions WHERE table_name = ?
	`, table).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count partitions: %w", err)
	}
	return n, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanPartition(s scanner) (Partition, error) {
	var p Partition
	var valuesJSON string

	if err := s.Scan(&p.Table, &p.Ident, &valuesJSON, &p.Shards); err != nil {
		return Partition{}, err
	}

	values, err := unmarshalTuple(valuesJSON)
	if err != nil {
		return Partition{}, fmt.Errorf("partition %s: %w", p.Ident, err)
	}
	p.Values = values
	return p, nil
}
