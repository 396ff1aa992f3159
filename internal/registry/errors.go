package registry

import "fmt"

// UnknownParameterError is returned when a name is not in the registry.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("%s is an unknown parameter", e.Name)
}

// UnknownIDError is returned when a wire id is not in the registry.
type UnknownIDError struct {
	ID uint32
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown parameter id %d", e.ID)
}

// DuplicateError reports a uniqueness violation in a descriptor table.
type DuplicateError struct {
	Field  string // "id", "name" or "alias"
	Value  string
	First  string
	Second string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("registry: duplicate %s %s (%s and %s)", e.Field, e.Value, e.First, e.Second)
}
