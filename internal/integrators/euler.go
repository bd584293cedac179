package integrators

import "github.com/san-kum/vehsim/internal/dynamo"

// Euler is the explicit first-order scheme x' = x + dt*f(x).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, error) {
	if err := dynamo.CheckDims(sys, x, u); err != nil {
		return nil, err
	}
	return x.Axpy(dt, sys.Derive(x, u, t)), nil
}
