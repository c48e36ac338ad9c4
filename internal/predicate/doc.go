// Package predicate parses WHERE-clause text into symbol trees.
//
// This is the CLI and harness surface, not a SQL frontend: the grammar
// covers the predicate shapes routing analysis cares about and nothing
// else.
//
// Grammar (precedence low to high):
//
//	expr       := or
//	or         := and ("OR" and)*
//	and        := unary ("AND" unary)*
//	unary      := "NOT" unary | primary
//	primary    := "(" expr ")"
//	            | "MATCH" "(" column "," string ")"
//	            | column op literal
//	            | column "IN" "(" literal ("," literal)* ")"
//	op         := "=" | "==" | "!=" | "<" | "<=" | ">" | ">="
//	literal    := string | integer | "TRUE" | "FALSE" | "NULL"
//	column     := ident ("." ident)*
//
// Keywords are case-insensitive. IN desugars to a disjunction of
// equalities, which is exactly the shape the extractor enumerates.
// Non-equality comparisons parse to generic boolean functions (neq, lt,
// lte, gt, gte) that the extractor treats as unanalyzable constraints.
// Floats are rejected, same as everywhere else in the tree.
package predicate
