package dynamo

import (
	"fmt"
	"math"
)

// State is a flat state vector.
type State []float64

// Control is a flat command vector.
type Control []float64

// Axpy returns s + h*d as a new vector. d must be at least as long as s.
func (s State) Axpy(h float64, d State) State {
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i] + h*d[i]
	}
	return out
}

// FirstNonFinite is the index of the first NaN or infinite slot, or -1.
func (s State) FirstNonFinite() int {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// MaxAbsDiff is the largest slot-wise distance between two vectors of the
// same length.
func (s State) MaxAbsDiff(o State) float64 {
	d := 0.0
	for i := range s {
		d = math.Max(d, math.Abs(s[i]-o[i]))
	}
	return d
}

// System is the right-hand side dX/dt = f(X, u, t) of a model with fixed
// state and control sizes.
type System interface {
	Derive(x State, u Control, t float64) State
	Dims() (state, control int)
}

// Integrator advances a System by one fixed step.
type Integrator interface {
	Step(sys System, x State, u Control, t, dt float64) (State, error)
}

// CheckDims rejects vectors that do not match the system's sizes.
func CheckDims(sys System, x State, u Control) error {
	ns, nc := sys.Dims()
	if len(x) != ns || len(u) != nc {
		return fmt.Errorf("%w: state %d/%d, control %d/%d", ErrDimensionMismatch, len(x), ns, len(u), nc)
	}
	return nil
}

// Configurable exposes named scalar parameters for sweeps and tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
