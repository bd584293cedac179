package vehicle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a post-update state that is non-finite or
	// outside the configured physical limits.
	ErrInvalidState = errors.New("vehicle: invalid state")

	// ErrInvalidInput indicates an update request with a non-positive dt.
	ErrInvalidInput = errors.New("vehicle: invalid input")
)

// StepError names the state field that failed validation.
type StepError struct {
	Field   string
	Value   float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%v: %s=%g", e.Wrapped, e.Field, e.Value)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
