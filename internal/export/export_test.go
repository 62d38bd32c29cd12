package export

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlitejson/internal/codec"
)

func encodeAll(t *testing.T, format Format, bodies ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := NewEncoder(format, &buf)
	require.NoError(t, err)
	for _, b := range bodies {
		require.NoError(t, enc.Encode(b))
	}
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestJSONL(t *testing.T) {
	out := encodeAll(t, FormatJSONL, `{"a":1}`, `[1,2]`, "{\n  \"b\": \"東京\"\n}")
	assert.Equal(t, "{\"a\":1}\n[1,2]\n{\"b\":\"東京\"}\n", string(out))
}

func TestYAML_RoundTrip(t *testing.T) {
	out := encodeAll(t, FormatYAML, `{"name":"ada","tags":["x","y"],"n":3}`, `{"ok":true,"rate":0.5}`)

	dec := yaml.NewDecoder(bytes.NewReader(out))
	var docs []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		docs = append(docs, v)
	}

	require.Len(t, docs, 2)
	assert.True(t, codec.Equal(map[string]any{"name": "ada", "tags": []any{"x", "y"}, "n": int64(3)}, docs[0]))
	assert.True(t, codec.Equal(map[string]any{"ok": true, "rate": 0.5}, docs[1]))
	assert.NotContains(t, string(out), `"3"`, "numbers stay numbers")
}

func TestCBOR_RoundTrip(t *testing.T) {
	bodies := []string{`{"name":"ada","tags":["x","y"],"n":3}`, `[1.5,null,"z"]`}
	out := encodeAll(t, FormatCBOR, bodies...)

	decMode, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
	require.NoError(t, err)
	dec := decMode.NewDecoder(bytes.NewReader(out))

	for _, body := range bodies {
		var v any
		require.NoError(t, dec.Decode(&v))
		want, err := codec.Decode(body)
		require.NoError(t, err)
		assert.True(t, codec.Equal(want, normalizeCBOR(v)), "want %s, got %#v", body, v)
	}

	var extra any
	assert.ErrorIs(t, dec.Decode(&extra), io.EOF)
}

// normalizeCBOR maps the decoder's unsigned integers onto int64.
func normalizeCBOR(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			val[k] = normalizeCBOR(elem)
		}
	case []any:
		for i, elem := range val {
			val[i] = normalizeCBOR(elem)
		}
	case uint64:
		return int64(val)
	}
	return v
}

func TestCBOR_Deterministic(t *testing.T) {
	a := encodeAll(t, FormatCBOR, `{"b":2,"a":1}`)
	b := encodeAll(t, FormatCBOR, `{"a":1,"b":2}`)
	assert.Equal(t, a, b)

	assert.Equal(t, []byte{0xa1, 0x61, 'a', 0x01}, encodeAll(t, FormatCBOR, `{"a":1}`))
}

func TestEncode_InvalidBody(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatCBOR} {
		var buf bytes.Buffer
		enc, err := NewEncoder(format, &buf)
		require.NoError(t, err)
		err = enc.Encode(`{"a":`)
		require.Error(t, err, format)
		assert.True(t, codec.IsDecodingError(err), format)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"jsonl": FormatJSONL, "YML": FormatYAML, "cbor": FormatCBOR} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)

	_, err = NewEncoder(Format("xml"), io.Discard)
	assert.Error(t, err)
}
