package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested table or row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is matched by every *ConflictError.
var ErrConflict = errors.New("conflict")

// ConflictError is returned when a create would duplicate a row id or a value
// in a unique column.
type ConflictError struct {
	Table  string
	Column string
	Value  string
}

func (e *ConflictError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("conflict: row %q already exists in %s", e.Value, e.Table)
	}
	return fmt.Sprintf("conflict: %s.%s %q already exists", e.Table, e.Column, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError is returned when a request does not match the table schema.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError wraps a transport failure talking to a remote store.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means a missing table or row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
