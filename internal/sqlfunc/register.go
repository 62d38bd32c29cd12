package sqlfunc

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Register installs the three functions on conn. It is meant to run from a
// sqlite3.SQLiteDriver ConnectHook so every connection a store opens gets
// them. A nil rnd falls back to SystemRand.
func Register(conn *sqlite3.SQLiteConn, rnd Rand) error {
	if rnd == nil {
		rnd = SystemRand()
	}

	if err := conn.RegisterFunc(NameContains, containsSQL, true); err != nil {
		return fmt.Errorf("register %s: %w", NameContains, err)
	}
	if err := conn.RegisterFunc(NameDropDup, dropDupSQL, true); err != nil {
		return fmt.Errorf("register %s: %w", NameDropDup, err)
	}
	randElem := func(array any) (any, error) {
		return randElemSQL(array, rnd)
	}
	if err := conn.RegisterFunc(NameRandElem, randElem, false); err != nil {
		return fmt.Errorf("register %s: %w", NameRandElem, err)
	}
	return nil
}

// The driver hands untyped arguments over as int64, float64, string, or
// []byte, with NULL arriving as a nil []byte.
func sqlArg(v any) any {
	if b, ok := v.([]byte); ok && b == nil {
		return nil
	}
	return v
}

// arrayArg extracts the JSON text of an array argument. ok is false for
// NULL.
func arrayArg(name string, v any) (text string, ok bool, err error) {
	switch val := sqlArg(v).(type) {
	case nil:
		return "", false, nil
	case string:
		return val, true, nil
	case []byte:
		return string(val), true, nil
	default:
		return "", false, fmt.Errorf("%s: expected JSON array text, got %T", name, val)
	}
}

func containsSQL(array, probe any) (any, error) {
	text, ok, err := arrayArg(NameContains, array)
	if err != nil || !ok {
		return nil, err
	}
	found, err := Contains(text, sqlArg(probe))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", NameContains, err)
	}
	return found, nil
}

func dropDupSQL(array any) (any, error) {
	text, ok, err := arrayArg(NameDropDup, array)
	if err != nil || !ok {
		return nil, err
	}
	out, err := DropDup(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", NameDropDup, err)
	}
	return out, nil
}

func randElemSQL(array any, rnd Rand) (any, error) {
	text, ok, err := arrayArg(NameRandElem, array)
	if err != nil || !ok {
		return nil, err
	}
	elem, err := RandElem(text, rnd)
	if err != nil {
		if errors.Is(err, ErrEmptyArray) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", NameRandElem, err)
	}
	return elem, nil
}
