package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// CompileError reports a spec compilation failure with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileTable parses a CUE value into a Table.
// The CUE value should be the table struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: orders: { ... }`)
//	tbl, err := CompileTable(v.LookupPath(cue.ParsePath("table.orders")))
func CompileTable(v cue.Value) (*Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &Table{
		Columns: make(map[string]sym.Type),
		Shards:  1,
	}

	// Table name comes from the struct label.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		t.Name = labels[len(labels)-1].String()
	}

	// columns (required, at least one)
	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{Field: "columns", Message: "columns is required", Pos: v.Pos()}
	}
	iter, err := colsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		typeStr, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "columns." + iter.Label(),
				Message: "column type must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		typ, err := parseColumnType(typeStr)
		if err != nil {
			return nil, &CompileError{
				Field:   "columns." + iter.Label(),
				Message: err.Error(),
				Pos:     iter.Value().Pos(),
			}
		}
		t.Columns[iter.Label()] = typ
	}
	if len(t.Columns) == 0 {
		return nil, &CompileError{Field: "columns", Message: "at least one column is required", Pos: v.Pos()}
	}

	// primary_key (optional)
	t.PrimaryKey, err = parseStringList(v, "primary_key")
	if err != nil {
		return nil, err
	}

	// partitioned_by (optional)
	t.PartitionedBy, err = parseStringList(v, "partitioned_by")
	if err != nil {
		return nil, err
	}

	// shards (optional, defaults to 1)
	shardsVal := v.LookupPath(cue.ParsePath("shards"))
	if shardsVal.Exists() {
		shards, err := shardsVal.Int64()
		if err != nil {
			return nil, &CompileError{Field: "shards", Message: "shards must be an integer", Pos: shardsVal.Pos()}
		}
		t.Shards = int(shards)
	}

	if errs := t.validate(); len(errs) > 0 {
		// Fail-fast on the first structural error; Validate collects all.
		return nil, &CompileError{Field: errs[0].Field, Message: errs[0].Message, Pos: v.Pos()}
	}

	return t, nil
}

// parseStringList reads an optional list-of-strings field.
func parseStringList(v cue.Value, field string) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of column names", Pos: listVal.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "entries must be strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	var pos token.Pos
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		pos = errs[0].Position()
	}
	return &CompileError{
		Field:   "cue",
		Message: cueerrors.Details(err, nil),
		Pos:     pos,
	}
}
