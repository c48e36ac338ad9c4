package sym

import (
	"fmt"
	"strings"
)

// Type is the value type a Symbol evaluates to.
// The extractor only needs to distinguish boolean-typed subtrees (candidates
// for collapsing) from everything else, so the enum stays coarse.
type Type int

const (
	// TypeUndefined is the type of symbols whose type is unknown or
	// irrelevant (e.g. a NULL literal before coercion).
	TypeUndefined Type = iota

	// TypeBool is the boolean type. Only boolean-typed functions are
	// eligible for the collapse-to-true rewrite.
	TypeBool

	// TypeString is the string type.
	TypeString

	// TypeInt is the 64-bit integer type.
	TypeInt

	// TypeObject is the nested-object type.
	TypeObject

	// TypeArray is the array type.
	TypeArray
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "undefined"
	}
}

// Built-in operator names. The normalizer folds exactly these; any other
// function name passes through untouched.
const (
	OpEq  = "eq"
	OpAnd = "and"
	OpOr  = "or"
	OpNot = "not"
)

// Symbol is the sealed expression-tree interface.
//
// Node types:
//   - Reference: a column read
//   - Literal: a constant value
//   - Function: an n-ary named operation (eq, and, or, not, or any
//     caller-defined name)
//   - Match: a full-text match predicate (never analyzable for routing)
//   - Proxy: an extraction-internal stand-in for one discovered equality
//
// Trees are immutable: rewrites allocate new nodes and share unchanged
// subtrees.
type Symbol interface {
	symbolNode() // Marker method - seals interface to this package

	// ValueType returns the type the symbol evaluates to.
	ValueType() Type
}

// Reference reads a column.
type Reference struct {
	Col  ColumnIdent
	Type Type
}

func (Reference) symbolNode() {}

// ValueType implements Symbol.
func (r Reference) ValueType() Type { return r.Type }

func (r Reference) String() string {
	return r.Col.Fqn()
}

// Literal is a constant value.
type Literal struct {
	Val  Value
	Type Type
}

func (Literal) symbolNode() {}

// ValueType implements Symbol.
func (l Literal) ValueType() Type { return l.Type }

func (l Literal) String() string {
	return ValueString(l.Val)
}

// Function is an n-ary named operation. Args order is significant.
type Function struct {
	Name string
	Args []Symbol
	Type Type
}

func (Function) symbolNode() {}

// ValueType implements Symbol.
func (f Function) ValueType() Type { return f.Type }

func (f Function) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = SymbolString(a)
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
}

// Match is a full-text match predicate against a column. It is always
// boolean-typed and never analyzable for routing: the extractor degrades to
// no-pruning when it sees one in exact mode.
type Match struct {
	Col   ColumnIdent
	Query string
}

func (Match) symbolNode() {}

// ValueType implements Symbol.
func (Match) ValueType() Type { return TypeBool }

func (m Match) String() string {
	return fmt.Sprintf("match(%s, %q)", m.Col.Fqn(), m.Query)
}

// Proxy stands in for one discovered equality during extraction. The
// extractor replaces each Function(eq, [Reference(target), Literal]) with a
// Proxy carrying a stable id, then tests candidate tuples by materializing
// the tree with chosen proxies as TRUE and the rest as their Origin.
//
// Proxy is immutable like every other node; the chosen/origin decision lives
// in the per-tuple substitution, never on the node itself. That keeps
// rewritten trees shareable and tuple evaluation pure.
type Proxy struct {
	// ID is the proxy's position in discovery order, unique within one
	// extraction call.
	ID int

	// Origin is the equality the proxy replaced.
	Origin Function
}

func (Proxy) symbolNode() {}

// ValueType implements Symbol.
func (p Proxy) ValueType() Type { return p.Origin.ValueType() }

func (p Proxy) String() string {
	return fmt.Sprintf("proxy#%d{%s}", p.ID, p.Origin.String())
}

// BoolTrue, BoolFalse and NullLiteral are the shared boolean/null constants.
// They are plain values, not identity-compared singletons; use IsTrue to
// test for the TRUE constant.
var (
	BoolTrue    = Literal{Val: Bool(true), Type: TypeBool}
	BoolFalse   = Literal{Val: Bool(false), Type: TypeBool}
	NullLiteral = Literal{Val: Null{}, Type: TypeUndefined}
)

// IsTrue reports whether s is the boolean TRUE literal.
func IsTrue(s Symbol) bool {
	l, ok := s.(Literal)
	if !ok {
		return false
	}
	b, ok := l.Val.(Bool)
	return ok && bool(b)
}

// IsFalse reports whether s is the boolean FALSE literal.
func IsFalse(s Symbol) bool {
	l, ok := s.(Literal)
	if !ok {
		return false
	}
	b, ok := l.Val.(Bool)
	return ok && !bool(b)
}

// Eq builds an equality between a column reference and a literal.
func Eq(col ColumnIdent, val Value) Function {
	return Function{
		Name: OpEq,
		Args: []Symbol{
			Reference{Col: col, Type: typeOf(val)},
			Literal{Val: val, Type: typeOf(val)},
		},
		Type: TypeBool,
	}
}

// And builds a conjunction.
func And(args ...Symbol) Function {
	return Function{Name: OpAnd, Args: args, Type: TypeBool}
}

// Or builds a disjunction.
func Or(args ...Symbol) Function {
	return Function{Name: OpOr, Args: args, Type: TypeBool}
}

// Not builds a negation.
func Not(arg Symbol) Function {
	return Function{Name: OpNot, Args: []Symbol{arg}, Type: TypeBool}
}

// typeOf maps a Value to its Type.
func typeOf(v Value) Type {
	switch v.(type) {
	case Null:
		return TypeUndefined
	case String:
		return TypeString
	case Int:
		return TypeInt
	case Bool:
		return TypeBool
	case Array:
		return TypeArray
	case Object:
		return TypeObject
	default:
		return TypeUndefined
	}
}

// SymbolString renders a symbol for display. All node types implement
// String(); this helper exists because Symbol itself only promises
// ValueType.
func SymbolString(s Symbol) string {
	type stringer interface{ String() string }
	if str, ok := s.(stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%v", s)
}
