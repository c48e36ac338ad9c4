package store

import (
	"fmt"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// marshalTuple serializes a value tuple to canonical JSON. The stored bytes
// are the same encoding TupleIdent hashes, so ident and values_json never
// disagree.
func marshalTuple(values []sym.Value) (string, error) {
	arr := make(sym.Array, len(values))
	copy(arr, values)
	b, err := sym.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal tuple: %w", err)
	}
	return string(b), nil
}

// unmarshalTuple deserializes a stored values_json column back to a tuple.
func unmarshalTuple(data string) ([]sym.Value, error) {
	v, err := sym.UnmarshalValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal tuple: %w", err)
	}
	arr, ok := v.(sym.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal tuple: expected array, got %T", v)
	}
	return []sym.Value(arr), nil
}
