package sym

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSymbol = "pinpoint/symbol/v1"
	DomainTuple  = "pinpoint/tuple/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the structural identity of a symbol tree: SHA-256 over the
// domain-separated canonical encoding. Two trees hash equal iff they are
// structurally identical - this is what lets the extractor collapse repeated
// occurrences of the same equality onto one proxy.
//
// Proxy nodes hash as their origin function, so a rewritten tree keeps the
// identity of the tree it was derived from.
func Hash(s Symbol) (string, error) {
	enc, err := encodeSymbol(s)
	if err != nil {
		return "", fmt.Errorf("Hash: %w", err)
	}
	canonical, err := MarshalCanonical(enc)
	if err != nil {
		return "", fmt.Errorf("Hash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSymbol, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustHash(s Symbol) string {
	h, err := Hash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// TupleIdent computes the content-addressed identity of an ordered value
// tuple. The store keys partition rows by this: a partition's identity is
// exactly the canonical encoding of its partition-column values.
func TupleIdent(tuple []Value) (string, error) {
	arr := make(Array, len(tuple))
	copy(arr, tuple)
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("TupleIdent: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTuple, canonical), nil
}

// MustTupleIdent is like TupleIdent but panics on error.
func MustTupleIdent(tuple []Value) string {
	id, err := TupleIdent(tuple)
	if err != nil {
		panic(err)
	}
	return id
}

// encodeSymbol converts a symbol tree to a Value for canonical encoding.
// Each node becomes an object with a "kind" discriminator; the encoding is
// total over the sealed variant set.
func encodeSymbol(s Symbol) (Value, error) {
	switch node := s.(type) {
	case Reference:
		return Object{
			"kind": String("ref"),
			"col":  String(node.Col.Fqn()),
			"type": Int(node.Type),
		}, nil
	case Literal:
		return Object{
			"kind": String("lit"),
			"val":  node.Val,
			"type": Int(node.Type),
		}, nil
	case Function:
		args := make(Array, len(node.Args))
		for i, a := range node.Args {
			enc, err := encodeSymbol(a)
			if err != nil {
				return nil, fmt.Errorf("arg[%d]: %w", i, err)
			}
			args[i] = enc
		}
		return Object{
			"kind": String("fn"),
			"name": String(node.Name),
			"args": args,
			"type": Int(node.Type),
		}, nil
	case Match:
		return Object{
			"kind":  String("match"),
			"col":   String(node.Col.Fqn()),
			"query": String(node.Query),
		}, nil
	case Proxy:
		// Identity of a proxy is the identity of what it replaced.
		return encodeSymbol(node.Origin)
	default:
		return nil, fmt.Errorf("unknown Symbol type: %T", s)
	}
}
