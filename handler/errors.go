package handler

import (
	"errors"
	"fmt"
)

// Sentinel errors for the handler registry and pipeline construction.
var (
	ErrUnknownKind    = errors.New("unknown handler kind")
	ErrAlreadyExists  = errors.New("handler kind already registered")
	ErrEmptyName      = errors.New("handler name is empty")
	ErrInvalidOptions = errors.New("invalid handler options")
)

// HandlerError reports a fault raised by a handler, as opposed to a result
// code it returned.
type HandlerError struct {
	// Index is the 0-based position of the handler in the pipeline.
	Index int

	// Name is the handler's display name.
	Name string

	// Err is the fault the handler returned.
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s (step %d) failed: %v", e.Name, e.Index, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
