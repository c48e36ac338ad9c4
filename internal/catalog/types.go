package catalog

import (
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// Table is the routing-relevant metadata for one table.
type Table struct {
	// Name is the table name, unique within a catalog.
	Name string `json:"name"`

	// Columns maps column name to declared type.
	Columns map[string]sym.Type `json:"columns"`

	// PrimaryKey lists the primary-key columns, in key order. Order is
	// significant: extracted tuples align with it.
	PrimaryKey []string `json:"primary_key,omitempty"`

	// PartitionedBy lists the partition columns, in declaration order.
	// Empty for unpartitioned tables.
	PartitionedBy []string `json:"partitioned_by,omitempty"`

	// Shards is the number of shards per table (or per partition when
	// PartitionedBy is set). At least 1.
	Shards int `json:"shards"`
}

// Catalog is a compiled set of tables keyed by name.
type Catalog struct {
	Tables map[string]*Table `json:"tables"`
}

// Lookup returns the table metadata or an error naming the table.
func (c *Catalog) Lookup(name string) (*Table, error) {
	t, ok := c.Tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// PrimaryKeyIdents returns the primary-key columns as ColumnIdents in key
// order, ready to hand to the extractor.
func (t *Table) PrimaryKeyIdents() []sym.ColumnIdent {
	idents := make([]sym.ColumnIdent, len(t.PrimaryKey))
	for i, name := range t.PrimaryKey {
		idents[i] = sym.ParseColumn(name)
	}
	return idents
}

// PartitionIdents returns the partition columns as ColumnIdents in
// declaration order.
func (t *Table) PartitionIdents() []sym.ColumnIdent {
	idents := make([]sym.ColumnIdent, len(t.PartitionedBy))
	for i, name := range t.PartitionedBy {
		idents[i] = sym.ParseColumn(name)
	}
	return idents
}

// ColumnType returns the declared type of a column; TypeUndefined when the
// column (or the root of a nested path) is not declared.
func (t *Table) ColumnType(col sym.ColumnIdent) sym.Type {
	typ, ok := t.Columns[col.Name]
	if !ok {
		return sym.TypeUndefined
	}
	if col.IsNested() {
		// Leaf types of nested paths are not declared in table specs.
		return sym.TypeUndefined
	}
	return typ
}

// parseColumnType maps a spec type string to a sym.Type.
func parseColumnType(s string) (sym.Type, error) {
	switch s {
	case "string":
		return sym.TypeString, nil
	case "int":
		return sym.TypeInt, nil
	case "bool":
		return sym.TypeBool, nil
	case "object":
		return sym.TypeObject, nil
	case "array":
		return sym.TypeArray, nil
	default:
		return sym.TypeUndefined, fmt.Errorf("unknown column type %q (want string, int, bool, object, or array)", s)
	}
}
