package codec

import (
	"fmt"

	"github.com/roach88/factorydata/internal/registry"
)

// InvalidValueError is returned when a value cannot be represented as the
// requested kind.
type InvalidValueError struct {
	Kind  registry.Kind
	Value any
	Err   error
}

func (e *InvalidValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s value %v: %v", e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s value %v", e.Kind, e.Value)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

func invalid(kind registry.Kind, value any, format string, args ...any) *InvalidValueError {
	return &InvalidValueError{Kind: kind, Value: value, Err: fmt.Errorf(format, args...)}
}
