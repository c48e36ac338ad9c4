package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(String("<a> & </a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a> & </a>"`, string(out))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "é" as combining sequence (e + U+0301) must normalize to the
	// precomposed form so both spellings hash identically.
	composed, err := MarshalCanonical(String("café"))
	require.NoError(t, err)
	decomposed, err := MarshalCanonical(String("café"))
	require.NoError(t, err)

	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalCanonical_LineSeparatorsUnescaped(t *testing.T) {
	out, err := MarshalCanonical(String("a b c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a b c\"", string(out))
}

func TestMarshalCanonical_LiteralBackslashU2028Preserved(t *testing.T) {
	// A literal backslash followed by the text "u2028" is not an escape
	// and must stay escaped as \\u2028.
	out, err := MarshalCanonical(String(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(out))
}

func TestMarshalCanonical_NullAllowed(t *testing.T) {
	// Predicates can contain NULL literals; their trees still need a
	// structural identity.
	out, err := MarshalCanonical(Null{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestMarshalCanonical_ObjectKeyOrder(t *testing.T) {
	out, err := MarshalCanonical(Object{
		"b": Int(2),
		"a": Array{Int(1), String("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,"x"],"b":2}`, string(out))
}
