package sqlfunc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/sqlitejson/internal/codec"
)

// ErrEmptyArray is returned by json_array_randelem for an empty array.
var ErrEmptyArray = errors.New("json_array_randelem: empty array")

// Function names as seen from SQL.
const (
	NameContains = "json_array_contains"
	NameDropDup  = "json_array_dropdup"
	NameRandElem = "json_array_randelem"
)

// Names lists the installed functions in registration order.
func Names() []string {
	return []string{NameContains, NameDropDup, NameRandElem}
}

// Contains reports whether probe equals any element of the JSON array in
// arrayText. SQLite has no boolean type, so an integer probe of 1 or 0 also
// matches JSON true or false. Strings must match byte for byte.
func Contains(arrayText string, probe any) (bool, error) {
	arr, err := codec.DecodeArray(arrayText)
	if err != nil {
		return false, err
	}
	key, err := codec.CanonicalKey(probe)
	if err != nil {
		return false, err
	}
	alt := boolKey(probe)
	for _, elem := range arr {
		k, err := codec.CanonicalKey(elem)
		if err != nil {
			return false, err
		}
		if k == key || (alt != "" && k == alt) {
			return true, nil
		}
	}
	return false, nil
}

// boolKey maps the integer probes 1 and 0 to the canonical form of true and
// false. Any other probe has no alternate form.
func boolKey(probe any) string {
	switch v := probe.(type) {
	case int64:
		switch v {
		case 1:
			return "true"
		case 0:
			return "false"
		}
	case int:
		return boolKey(int64(v))
	}
	return ""
}

// DropDup returns the JSON array in arrayText with duplicate values removed.
// The element order of the result is unspecified.
func DropDup(arrayText string) (string, error) {
	arr, err := codec.DecodeArray(arrayText)
	if err != nil {
		return "", err
	}
	seen := make(map[string]struct{}, len(arr))
	out := make([]any, 0, len(arr))
	for _, elem := range arr {
		k, err := codec.CanonicalKey(elem)
		if err != nil {
			return "", err
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, elem)
	}
	text, err := codec.Encode(out)
	if err != nil {
		return "", err
	}
	return text.(string), nil
}

// RandElem returns one element of the JSON array in arrayText chosen with
// rnd. The element is converted to a SQLite value: strings stay text,
// numbers become int64 or float64, booleans become 1 or 0, null is NULL,
// and nested arrays and objects are returned as JSON text.
func RandElem(arrayText string, rnd Rand) (any, error) {
	arr, err := codec.DecodeArray(arrayText)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, ErrEmptyArray
	}
	return toSQLValue(arr[rnd.IntN(len(arr))])
}

func toSQLValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string:
		return val, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, nil
		}
		// Literals beyond float64 range come back as +Inf or -Inf.
		f, err := val.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("number %q: %w", val, err)
		}
		return f, nil
	default:
		text, err := codec.Encode(val)
		if err != nil {
			return nil, err
		}
		return text, nil
	}
}
