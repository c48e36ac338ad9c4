package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalValue_RejectsFloats(t *testing.T) {
	_, err := UnmarshalValue([]byte(`3.14`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = UnmarshalValue([]byte(`{"price": 9.99}`))
	require.Error(t, err, "floats nested in objects must be rejected too")

	_, err = UnmarshalValue([]byte(`1e3`))
	require.Error(t, err, "exponent notation is a float even when integral")
}

func TestUnmarshalValue_Null(t *testing.T) {
	v, err := UnmarshalValue([]byte(`null`))
	require.NoError(t, err)
	assert.True(t, IsNull(v), "JSON null becomes the Null value")
}

func TestUnmarshalValue_RoundTrip(t *testing.T) {
	v, err := UnmarshalValue([]byte(`{"region":"eu-west","tenant":42,"active":true}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, String("eu-west"), obj["region"])
	assert.Equal(t, Int(42), obj["tenant"])
	assert.Equal(t, Bool(true), obj["active"])
}

func TestObject_SortedKeysUTF16Order(t *testing.T) {
	// RFC 8785 orders by UTF-16 code units. The emoji (surrogate pair,
	// first unit 0xD83D) sorts BEFORE U+FB33 even though its code point
	// (U+1F600) is larger - UTF-8 byte order would get this wrong.
	obj := Object{
		"דּ":     Int(1),
		"\U0001F600": Int(2), // surrogate pair D83D DE00
		"é":     Int(3),
		"a":          Int(4),
	}

	keys := obj.SortedKeys()
	assert.Equal(t, []string{"a", "é", "\U0001F600", "דּ"}, keys)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", ValueString(Null{}))
	assert.Equal(t, `"eu-west"`, ValueString(String("eu-west")))
	assert.Equal(t, "42", ValueString(Int(42)))
	assert.Equal(t, "true", ValueString(Bool(true)))
}

func TestMarshalValue_ObjectDeterministic(t *testing.T) {
	obj := Object{"b": Int(2), "a": Int(1)}

	first, err := MarshalValue(obj)
	require.NoError(t, err)
	second, err := MarshalValue(obj)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, `{"a":1,"b":2}`, string(first))
}
