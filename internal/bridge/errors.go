package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownHandle   = errors.New("unknown or released key handle")
	ErrMockRNGDisabled = errors.New("mock rng is disabled for this registry")
)

// HandleError reports a failed operation on a key handle
type HandleError struct {
	Operation string
	Handle    Handle
	Cause     error
}

// Error implements the error interface
func (e *HandleError) Error() string {
	return fmt.Sprintf("bridge error in %s on handle %d: %v", e.Operation, e.Handle, e.Cause)
}

// Unwrap returns the underlying error
func (e *HandleError) Unwrap() error {
	return e.Cause
}

func newHandleError(operation string, h Handle, cause error) *HandleError {
	return &HandleError{
		Operation: operation,
		Handle:    h,
		Cause:     cause,
	}
}
