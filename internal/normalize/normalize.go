package normalize

import (
	"bytes"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// Simplify reduces a symbol tree by constant folding, as far as the
// constants in the tree allow. Given a tree whose relevant leaves are
// boolean constants it reduces to a single literal; anything it cannot fold
// it returns rebuilt with simplified arguments.
//
// Simplify never mutates its input and never errors: a subtree it does not
// understand is simply left as-is.
func Simplify(s sym.Symbol) sym.Symbol {
	switch node := s.(type) {
	case sym.Reference, sym.Literal, sym.Match, sym.Proxy:
		return s
	case sym.Function:
		return simplifyFunction(node)
	default:
		return s
	}
}

func simplifyFunction(f sym.Function) sym.Symbol {
	args := make([]sym.Symbol, len(f.Args))
	for i, a := range f.Args {
		args[i] = Simplify(a)
	}

	switch f.Name {
	case sym.OpEq:
		return foldEq(f, args)
	case sym.OpAnd:
		return foldAnd(args)
	case sym.OpOr:
		return foldOr(args)
	case sym.OpNot:
		return foldNot(f, args)
	default:
		return sym.Function{Name: f.Name, Args: args, Type: f.Type}
	}
}

// foldEq folds an equality over two literals. NULL on either side yields
// NULL (three-valued logic: NULL = x is unknown, never TRUE).
func foldEq(f sym.Function, args []sym.Symbol) sym.Symbol {
	if len(args) != 2 {
		return sym.Function{Name: f.Name, Args: args, Type: f.Type}
	}
	left, lok := args[0].(sym.Literal)
	right, rok := args[1].(sym.Literal)
	if !lok || !rok {
		return sym.Function{Name: f.Name, Args: args, Type: f.Type}
	}
	if sym.IsNull(left.Val) || sym.IsNull(right.Val) {
		return sym.NullLiteral
	}
	eq, ok := valuesEqual(left.Val, right.Val)
	if !ok {
		return sym.Function{Name: f.Name, Args: args, Type: f.Type}
	}
	if eq {
		return sym.BoolTrue
	}
	return sym.BoolFalse
}

// foldAnd folds a conjunction. TRUE operands are dropped, any FALSE operand
// decides the result, and a conjunction left with only NULL operands is
// NULL. A single surviving operand is returned as-is.
func foldAnd(args []sym.Symbol) sym.Symbol {
	remaining := make([]sym.Symbol, 0, len(args))
	for _, a := range args {
		if sym.IsTrue(a) {
			continue
		}
		if sym.IsFalse(a) {
			return sym.BoolFalse
		}
		remaining = append(remaining, a)
	}
	if len(remaining) == 0 {
		return sym.BoolTrue
	}
	if allNull(remaining) {
		return sym.NullLiteral
	}
	if len(remaining) == 1 {
		return remaining[0]
	}
	return sym.Function{Name: sym.OpAnd, Args: remaining, Type: sym.TypeBool}
}

// foldOr folds a disjunction, dual to foldAnd.
func foldOr(args []sym.Symbol) sym.Symbol {
	remaining := make([]sym.Symbol, 0, len(args))
	for _, a := range args {
		if sym.IsFalse(a) {
			continue
		}
		if sym.IsTrue(a) {
			return sym.BoolTrue
		}
		remaining = append(remaining, a)
	}
	if len(remaining) == 0 {
		return sym.BoolFalse
	}
	if allNull(remaining) {
		return sym.NullLiteral
	}
	if len(remaining) == 1 {
		return remaining[0]
	}
	return sym.Function{Name: sym.OpOr, Args: remaining, Type: sym.TypeBool}
}

// foldNot folds a three-valued negation.
func foldNot(f sym.Function, args []sym.Symbol) sym.Symbol {
	if len(args) != 1 {
		return sym.Function{Name: f.Name, Args: args, Type: f.Type}
	}
	switch {
	case sym.IsTrue(args[0]):
		return sym.BoolFalse
	case sym.IsFalse(args[0]):
		return sym.BoolTrue
	case isNullLiteral(args[0]):
		return sym.NullLiteral
	}
	// not(not(x)) => x
	if inner, ok := args[0].(sym.Function); ok && inner.Name == sym.OpNot && len(inner.Args) == 1 {
		return inner.Args[0]
	}
	return sym.Function{Name: f.Name, Args: args, Type: f.Type}
}

func isNullLiteral(s sym.Symbol) bool {
	l, ok := s.(sym.Literal)
	return ok && sym.IsNull(l.Val)
}

func allNull(args []sym.Symbol) bool {
	for _, a := range args {
		if !isNullLiteral(a) {
			return false
		}
	}
	return true
}

// valuesEqual compares two values structurally via their canonical
// encodings. The second return is false when a value cannot be canonically
// encoded, in which case the caller must not fold.
func valuesEqual(a, b sym.Value) (equal bool, ok bool) {
	ab, err := sym.MarshalCanonical(a)
	if err != nil {
		return false, false
	}
	bb, err := sym.MarshalCanonical(b)
	if err != nil {
		return false, false
	}
	return bytes.Equal(ab, bb), true
}
