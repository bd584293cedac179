package dynamo

import "errors"

var (
	ErrParameterBounds = errors.New("dynamo: parameter out of bounds")
	ErrUnknownParam    = errors.New("dynamo: unknown parameter")

	// ErrDimensionMismatch is returned by steppers handed vectors of the
	// wrong size for their system.
	ErrDimensionMismatch = errors.New("dynamo: vector size does not match system")
)
