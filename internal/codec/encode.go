package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Encoder serializes documents for the body column. The zero value is ready
// to use and writes strings byte-for-byte as given.
type Encoder struct {
	// NormalizeNFC rewrites every string in a structured document to
	// Unicode Normalization Form C. Scalars are never touched.
	NormalizeNFC bool
}

// Encode is Encoder{}.Encode.
func Encode(v any) (any, error) {
	return Encoder{}.Encode(v)
}

// Encode returns the value to bind for v: JSON text for structured
// documents, the scalar itself otherwise. Pre-serialized text given as
// []byte or json.RawMessage is returned as a string so SQLite stores it
// with TEXT affinity.
func (e Encoder) Encode(v any) (any, error) {
	doc, err := Classify(v)
	if err != nil {
		return nil, err
	}
	switch d := doc.(type) {
	case Structured:
		text, err := e.marshal(d.Value)
		if err != nil {
			return nil, err
		}
		return text, nil
	case Scalar:
		switch val := d.Value.(type) {
		case json.RawMessage:
			return string(val), nil
		case []byte:
			return string(val), nil
		}
		return d.Value, nil
	}
	return nil, &EncodingError{Type: fmt.Sprintf("%T", v)}
}

// EncodeText is Encode for callers that need text: scalars are rendered as
// JSON as well. Used where a document leaves the store, never on insert.
func (e Encoder) EncodeText(v any) (string, error) {
	doc, err := Classify(v)
	if err != nil {
		return "", err
	}
	if s, ok := doc.(Scalar); ok {
		switch val := s.Value.(type) {
		case json.RawMessage:
			return string(val), nil
		case []byte:
			return string(val), nil
		}
	}
	return e.marshal(v)
}

func (e Encoder) marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", &EncodingError{Type: fmt.Sprintf("%T", v), Err: err}
	}

	// Encoder adds a trailing newline, remove it
	data := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	data = unescapeLineSeparators(data)
	if e.NormalizeNFC {
		// JSON punctuation has no canonical compositions, so normalizing the
		// whole text only changes string contents.
		data = norm.NFC.Bytes(data)
	}
	return string(data), nil
}

// unescapeLineSeparators writes U+2028 and U+2029 back as literal
// characters. encoding/json escapes them for JavaScript embedding; the body
// column keeps non-ASCII text verbatim. Escape pairs are consumed two bytes
// at a time so an escaped backslash followed by "u2028" stays as it is.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '\\' || i+1 >= len(data) {
			out = append(out, c)
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) && string(data[i+2:i+5]) == "202" {
			switch data[i+5] {
			case '8':
				out = append(out, "\u2028"...)
				i += 5
				continue
			case '9':
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, c, data[i+1])
		i++
	}
	return out
}
