// Package sym provides the expression-tree types shared by every other
// internal package.
//
// This package contains type definitions and their canonical encodings only.
// All other internal packages import sym; sym imports nothing internal. This
// ensures the tree remains the foundational layer with no circular
// dependencies.
//
// SEALED INTERFACES:
//
// Symbol and Value are sealed interfaces using the marker method pattern.
// Only types in this package implement them, which enables exhaustive type
// switches in the normalizer, the extractor, and the residual SQL compiler:
//
//	switch s := symbol.(type) {
//	case sym.Reference:
//	    // ...
//	case sym.Literal:
//	    // ...
//	case sym.Function:
//	    // ...
//	case sym.Match:
//	    // ...
//	case sym.Proxy:
//	    // ...
//	}
//
// A case that is missing shows up the moment a new variant is added, instead
// of silently falling through a visitor default.
//
// Key design constraints:
//   - Trees are immutable. Rewrites build new nodes; shared subtrees are
//     never mutated in place.
//   - NO float types anywhere - routing keys must encode canonically, and
//     floats break bit-identical hashing. Use Int for numbers.
//   - Structural identity is SHA-256 over RFC 8785 canonical JSON with
//     domain separation, never pointer identity.
package sym
