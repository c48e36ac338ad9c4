package residual

import (
	"fmt"
	"strings"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// Fragment is a compiled WHERE-clause fragment with its bound parameters.
// Params line up positionally with the ? placeholders in SQL.
type Fragment struct {
	SQL    string
	Params []any
}

// comparison operators the compiler knows how to render. eq/and/or/not are
// handled structurally; everything else in this table renders as an infix
// binary comparison.
var infixOps = map[string]string{
	"eq":  "=",
	"neq": "<>",
	"lt":  "<",
	"lte": "<=",
	"gt":  ">",
	"gte": ">=",
}

// Compile converts a predicate tree to a parameterized SQL fragment.
//
// Proxy nodes compile as the equality they replaced, so a rewritten tree
// from the extractor compiles to the same fragment as the original
// predicate. Values are bound as ? parameters, never interpolated.
func Compile(s sym.Symbol) (Fragment, error) {
	if s == nil {
		return Fragment{}, fmt.Errorf("cannot compile nil predicate")
	}

	switch node := s.(type) {
	case sym.Literal:
		return compileLiteral(node)
	case sym.Reference:
		return Fragment{SQL: columnExpr(node.Col)}, nil
	case sym.Function:
		return compileFunction(node)
	case sym.Match:
		return Fragment{
			SQL:    columnExpr(node.Col) + " MATCH ?",
			Params: []any{node.Query},
		}, nil
	case sym.Proxy:
		return compileFunction(node.Origin)
	default:
		return Fragment{}, fmt.Errorf("unsupported symbol type: %T", s)
	}
}

// compileLiteral renders a constant in predicate position. Boolean
// constants render as trivially true/false comparisons there; operand
// position binds them as parameters instead (see compileOperand).
func compileLiteral(l sym.Literal) (Fragment, error) {
	if sym.IsTrue(l) {
		return Fragment{SQL: "1 = 1"}, nil
	}
	if sym.IsFalse(l) {
		return Fragment{SQL: "1 = 0"}, nil
	}
	param, err := valueParam(l.Val)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{SQL: "?", Params: []any{param}}, nil
}

// compileOperand renders a comparison operand. Literals always bind as ?
// parameters here; the 1 = 1 form is only valid in predicate position,
// as an operand it would nest into a second comparison.
func compileOperand(s sym.Symbol) (Fragment, error) {
	if l, ok := s.(sym.Literal); ok {
		param, err := valueParam(l.Val)
		if err != nil {
			return Fragment{}, err
		}
		return Fragment{SQL: "?", Params: []any{param}}, nil
	}
	return Compile(s)
}

func compileFunction(f sym.Function) (Fragment, error) {
	switch f.Name {
	case sym.OpAnd:
		return compileVariadic(f, "AND")
	case sym.OpOr:
		return compileVariadic(f, "OR")
	case sym.OpNot:
		if len(f.Args) != 1 {
			return Fragment{}, fmt.Errorf("not: expected 1 argument, got %d", len(f.Args))
		}
		inner, err := Compile(f.Args[0])
		if err != nil {
			return Fragment{}, err
		}
		return Fragment{SQL: "NOT (" + inner.SQL + ")", Params: inner.Params}, nil
	}

	op, ok := infixOps[f.Name]
	if !ok {
		return Fragment{}, fmt.Errorf("unsupported function %q", f.Name)
	}
	if len(f.Args) != 2 {
		return Fragment{}, fmt.Errorf("%s: expected 2 arguments, got %d", f.Name, len(f.Args))
	}

	left, err := compileOperand(f.Args[0])
	if err != nil {
		return Fragment{}, fmt.Errorf("%s: %w", f.Name, err)
	}
	right, err := compileOperand(f.Args[1])
	if err != nil {
		return Fragment{}, fmt.Errorf("%s: %w", f.Name, err)
	}

	// IS NULL instead of = NULL: SQL equality against NULL is never true
	if f.Name == "eq" && isNullLiteral(f.Args[1]) {
		return Fragment{SQL: left.SQL + " IS NULL", Params: left.Params}, nil
	}
	if f.Name == "neq" && isNullLiteral(f.Args[1]) {
		return Fragment{SQL: left.SQL + " IS NOT NULL", Params: left.Params}, nil
	}

	return Fragment{
		SQL:    left.SQL + " " + op + " " + right.SQL,
		Params: append(left.Params, right.Params...),
	}, nil
}

func compileVariadic(f sym.Function, join string) (Fragment, error) {
	if len(f.Args) == 0 {
		// Vacuous conjunction/disjunction
		if join == "AND" {
			return Fragment{SQL: "1 = 1"}, nil
		}
		return Fragment{SQL: "1 = 0"}, nil
	}
	if len(f.Args) == 1 {
		return Compile(f.Args[0])
	}

	parts := make([]string, 0, len(f.Args))
	var params []any
	for _, arg := range f.Args {
		inner, err := Compile(arg)
		if err != nil {
			return Fragment{}, err
		}
		parts = append(parts, "("+inner.SQL+")")
		params = append(params, inner.Params...)
	}
	return Fragment{SQL: strings.Join(parts, " "+join+" "), Params: params}, nil
}

// columnExpr renders a column reference. Nested paths go through
// json_extract on the top-level column.
func columnExpr(col sym.ColumnIdent) string {
	if !col.IsNested() {
		return col.Name
	}
	return fmt.Sprintf("json_extract(%s, '$.%s')", col.Name, col.Path)
}

// valueParam converts a Value to a driver-native SQL parameter.
// Arrays and objects bind as their canonical JSON text.
func valueParam(v sym.Value) (any, error) {
	switch val := v.(type) {
	case sym.Null:
		return nil, nil
	case sym.String:
		return string(val), nil
	case sym.Int:
		return int64(val), nil
	case sym.Bool:
		return bool(val), nil
	case sym.Array, sym.Object:
		b, err := sym.MarshalCanonical(val)
		if err != nil {
			return nil, fmt.Errorf("marshal composite value: %w", err)
		}
		return string(b), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

func isNullLiteral(s sym.Symbol) bool {
	l, ok := s.(sym.Literal)
	return ok && sym.IsNull(l.Val)
}
