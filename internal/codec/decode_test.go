package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	v, err := Decode(`{"a":[1,2.5,"x",null,false]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": []any{json.Number("1"), json.Number("2.5"), "x", nil, false},
	}, v)
}

func TestDecode_Invalid(t *testing.T) {
	inputs := []string{``, `{`, `[1,]`, `nope`, `[1] [2]`, `{"a":1}x`}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Decode(in)
			require.Error(t, err)
			assert.True(t, IsDecodingError(err))
		})
	}
}

func TestDecodeArray(t *testing.T) {
	arr, err := DecodeArray(` [1, "two"] `)
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), "two"}, arr)

	_, err = DecodeArray(`{"a":1}`)
	require.Error(t, err)
	assert.True(t, IsDecodingError(err))
	assert.Contains(t, err.Error(), "got object")
}
