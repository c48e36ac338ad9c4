// Package testutil provides shared fixtures for routing tests: canned
// catalog tables and pre-populated partition stores.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pinpoint-db/pinpoint/internal/catalog"
	"github.com/pinpoint-db/pinpoint/internal/store"
	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// UsersTable returns a primary-keyed table fixture: users(id int, name
// string), keyed by id, 4 shards.
func UsersTable() *catalog.Table {
	return &catalog.Table{
		Name: "users",
		Columns: map[string]sym.Type{
			"id":   sym.TypeInt,
			"name": sym.TypeString,
		},
		PrimaryKey: []string{"id"},
		Shards:     4,
	}
}

// OrdersTable returns a partitioned table fixture: orders(region string,
// amount int), partitioned by region, 2 shards per partition.
func OrdersTable() *catalog.Table {
	return &catalog.Table{
		Name: "orders",
		Columns: map[string]sym.Type{
			"region": sym.TypeString,
			"amount": sym.TypeInt,
		},
		PartitionedBy: []string{"region"},
		Shards:        2,
	}
}

// OpenStore opens a store on a fresh temp database, closed on test cleanup.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "partitions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// RegisterRegions registers one single-value partition per region for the
// orders fixture.
func RegisterRegions(t *testing.T, st *store.Store, regions ...string) {
	t.Helper()
	for _, region := range regions {
		_, err := st.RegisterPartition(context.Background(), "orders", []sym.Value{sym.String(region)}, 2)
		if err != nil {
			t.Fatalf("register partition %q: %v", region, err)
		}
	}
}
