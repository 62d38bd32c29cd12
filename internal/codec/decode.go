package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decode parses JSON text into native values: map[string]any, []any,
// string, bool, nil, and json.Number for numbers so large integers keep
// their precision. Trailing data after the first value is an error.
func Decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodingError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodingError{Err: fmt.Errorf("unexpected data after top-level value")}
	}
	return v, nil
}

// DecodeArray parses JSON text that must hold an array.
func DecodeArray(text string) ([]any, error) {
	v, err := Decode(text)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &DecodingError{Err: fmt.Errorf("expected JSON array, got %s", kindName(v))}
	}
	return arr, nil
}

func kindName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
