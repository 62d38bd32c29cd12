package codec

import (
	"errors"
	"fmt"
)

// EncodingError reports a document that cannot be serialized to JSON text.
type EncodingError struct {
	// Type is the Go type of the offending value.
	Type string

	// Err is the underlying serializer error, if any.
	Err error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("encode %s: unsupported document type", e.Type)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// DecodingError reports text that is not valid JSON, or not the JSON shape
// the caller asked for.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode json: %v", e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// IsEncodingError returns true if err wraps an *EncodingError.
func IsEncodingError(err error) bool {
	var ee *EncodingError
	return errors.As(err, &ee)
}

// IsDecodingError returns true if err wraps a *DecodingError.
func IsDecodingError(err error) bool {
	var de *DecodingError
	return errors.As(err, &de)
}
