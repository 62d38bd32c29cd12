package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// CanonicalKey renders v in a deterministic JSON form suitable as a map key
// for value equality. It accepts decoded JSON values and the types SQLite
// hands back (int64, float64, string, []byte, nil).
//
// Strings compare byte for byte; no Unicode normalization is applied.
// Numbers too large for float64 collapse to one key per sign.
func CanonicalKey(v any) (string, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Equal reports whether a and b hold the same JSON value. Numbers compare
// by value regardless of representation. Values that cannot be rendered
// are never equal to anything.
func Equal(a, b any) bool {
	ka, err := CanonicalKey(a)
	if err != nil {
		return false
	}
	kb, err := CanonicalKey(b)
	if err != nil {
		return false
	}
	return ka == kb
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		return writeCanonicalString(buf, val)
	case []byte:
		return writeCanonicalString(buf, string(val))
	case json.Number:
		s, err := canonicalNumber(string(val))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case float64:
		s, err := canonicalFloat(val)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return &EncodingError{Type: fmt.Sprintf("%T", v), Err: fmt.Errorf("not a JSON value")}
	}
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // trailing newline
	return nil
}

// canonicalNumber maps a JSON number literal to one normal form: integers
// that fit int64 print as integers, everything else goes through float64.
func canonicalNumber(s string) (string, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("invalid number %q: %w", s, err)
	}
	// Out of range literals such as 1e400 parse to +Inf or -Inf.
	return canonicalFloat(f)
}

// Keys for numbers beyond float64 range.
const (
	posOverflowKey = "1e999"
	negOverflowKey = "-1e999"
)

func canonicalFloat(f float64) (string, error) {
	switch {
	case math.IsNaN(f):
		return "", fmt.Errorf("non-finite number %v", f)
	case math.IsInf(f, 1):
		return posOverflowKey, nil
	case math.IsInf(f, -1):
		return negOverflowKey, nil
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// compareUTF16 orders strings by UTF-16 code units, the RFC 8785 key order.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}
