package store

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every Store method called after Close.
var ErrClosed = errors.New("store: closed")

// ConfigurationError reports a store that cannot be opened as configured:
// an invalid identifier or an engine too old for the JSON functions.
type ConfigurationError struct {
	// Field names the offending setting, e.g. "table" or "sqlite_version".
	Field string

	// Value is the rejected value.
	Value string

	// Message is a human-readable description.
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// IsConfigurationError returns true if err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
