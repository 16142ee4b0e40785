package erp

import (
	"errors"
	"fmt"
)

// ConnectionError wraps a transport or authentication failure against the
// external ERP database. It aborts the current sync phase; committed data
// from earlier phases is left untouched.
type ConnectionError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("erp: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying driver error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Err: err}
}

// IsConnectionError reports whether err is (or wraps) a ConnectionError
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
