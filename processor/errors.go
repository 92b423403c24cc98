package processor

import (
	"errors"
	"fmt"
)

// ErrNoOutput is reported when a listener request carries no output channel.
var ErrNoOutput = errors.New("listener request has no output")

// ErrNoRequest is reported when a listener request carries no request.
var ErrNoRequest = errors.New("listener request has no request")

// PanicError wraps a panic recovered at a processing phase boundary.
type PanicError struct {
	Phase string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during %s: %v", e.Phase, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
