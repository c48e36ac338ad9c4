package sym

import "strings"

// ColumnIdent identifies a column, optionally a nested path inside an
// object-typed column. It is a comparable struct so it can be used directly
// as a map key.
type ColumnIdent struct {
	// Name is the top-level column name.
	Name string

	// Path is the dotted path below the column for nested access
	// (e.g. "address.zip" inside a "shipping" object column).
	// Empty for plain columns.
	Path string
}

// Column creates a ColumnIdent for a plain (non-nested) column.
func Column(name string) ColumnIdent {
	return ColumnIdent{Name: name}
}

// NestedColumn creates a ColumnIdent for a nested path.
func NestedColumn(name string, path ...string) ColumnIdent {
	return ColumnIdent{Name: name, Path: strings.Join(path, ".")}
}

// ParseColumn parses a dotted column string ("a" or "a.b.c") into a
// ColumnIdent. The first segment is the column name, the rest is the path.
func ParseColumn(s string) ColumnIdent {
	name, path, found := strings.Cut(s, ".")
	if !found {
		return ColumnIdent{Name: s}
	}
	return ColumnIdent{Name: name, Path: path}
}

// Fqn returns the fully qualified dotted form.
func (c ColumnIdent) Fqn() string {
	if c.Path == "" {
		return c.Name
	}
	return c.Name + "." + c.Path
}

// IsNested reports whether the ident denotes a path below the column.
func (c ColumnIdent) IsNested() bool {
	return c.Path != ""
}

func (c ColumnIdent) String() string {
	return c.Fqn()
}
