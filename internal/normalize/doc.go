// Package normalize implements the constant-folding simplifier used by the
// extraction loop.
//
// Simplify is pure and referentially transparent: the same input tree always
// yields the same output tree, with no observable side effects. The
// extractor relies on this - it calls Simplify once per candidate tuple,
// and any hidden state would break the idempotence guarantee of an
// extraction call.
//
// Folding is three-valued (SQL semantics): a NULL literal propagates through
// eq and not, and participates in and/or the usual way (FALSE dominates AND,
// TRUE dominates OR, NULL wins over the remaining constant). Subtrees that
// cannot be folded are rebuilt with simplified arguments and otherwise left
// alone; unknown function names always pass through.
package normalize
