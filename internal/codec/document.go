package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Document is a caller value resolved to one side of the storage boundary.
// Only Structured and Scalar implement it.
type Document interface {
	document() // Sealed
}

// Structured wraps a mapping, sequence or struct that is stored as JSON text.
type Structured struct {
	Value any
}

func (Structured) document() {}

// Scalar wraps a value that is handed to the driver unchanged.
type Scalar struct {
	Value any
}

func (Scalar) document() {}

// Classify resolves v into Structured or Scalar. Pointers are followed; a
// nil pointer is the scalar nil.
func Classify(v any) (Document, error) {
	switch val := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		json.Number, json.RawMessage, []byte:
		return Scalar{Value: val}, nil
	case map[string]any, []any:
		return Structured{Value: val}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Scalar{Value: nil}, nil
		}
		return Classify(rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &EncodingError{Type: rv.Type().String(), Err: fmt.Errorf("map keys must be strings")}
		}
		return Structured{Value: v}, nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Scalar{Value: rv.Bytes()}, nil
		}
		return Structured{Value: v}, nil
	case reflect.Array, reflect.Struct:
		return Structured{Value: v}, nil
	case reflect.String:
		return Scalar{Value: rv.String()}, nil
	case reflect.Bool:
		return Scalar{Value: rv.Bool()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar{Value: rv.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Scalar{Value: rv.Uint()}, nil
	case reflect.Float32, reflect.Float64:
		return Scalar{Value: rv.Float()}, nil
	}
	return nil, &EncodingError{Type: fmt.Sprintf("%T", v)}
}
