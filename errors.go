package rowgraph

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotBuilt is wrapped by the RunError returned when rows are pushed
// through a Materializer whose Build never completed.
var ErrNotBuilt = errors.New("materializer not fully built")

// ConfigError reports an invalid mapper or relationship-graph
// configuration. It is returned by Builder.Build (and by descriptor
// providers) before any row is processed; it is always fatal and never
// retried.
type ConfigError struct {
	// Type is the offending entity type, if one is known.
	Type reflect.Type
	// Property is the offending property name, if one is involved.
	Property string

	msg string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	switch {
	case e.Type != nil && e.Property != "":
		return fmt.Sprintf("rowgraph: %s (type %s, property %q)", e.msg, e.Type, e.Property)
	case e.Type != nil:
		return fmt.Sprintf("rowgraph: %s (type %s)", e.msg, e.Type)
	default:
		return "rowgraph: " + e.msg
	}
}

// NewConfigError returns a ConfigError naming the offending type and
// property. It is exported for descriptor providers and graph loaders
// layered on top of the engine.
func NewConfigError(t reflect.Type, property, format string, args ...any) *ConfigError {
	return &ConfigError{Type: t, Property: property, msg: fmt.Sprintf(format, args...)}
}

func newConfigError(t reflect.Type, property, format string, args ...any) *ConfigError {
	return NewConfigError(t, property, format, args...)
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}

// RunError reports programmer-level misuse detected while running a
// materialization or merge, such as driving an unbuilt Materializer. Like
// ConfigError it is fatal; data-shape anomalies (NULL identifiers, empty
// merge inputs) are not errors at all.
type RunError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e *RunError) Error() string {
	if e.wrap != nil {
		return fmt.Sprintf("rowgraph: %s: %v", e.msg, e.wrap)
	}
	return "rowgraph: " + e.msg
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error { return e.wrap }

// newRunError returns a new RunError.
func newRunError(format string, args ...any) *RunError {
	return &RunError{msg: fmt.Sprintf(format, args...)}
}

// wrapRunError wraps err with a RunError so errors.Is still matches the
// underlying sentinel.
func wrapRunError(err error, format string, args ...any) *RunError {
	return &RunError{msg: fmt.Sprintf(format, args...), wrap: err}
}

// IsRunError returns true if the error is a RunError.
func IsRunError(err error) bool {
	if err == nil {
		return false
	}
	var e *RunError
	return errors.As(err, &e)
}
