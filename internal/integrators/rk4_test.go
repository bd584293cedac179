package integrators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/vehsim/internal/dynamo"
)

// oscillator is x'' = -x with no input.
type oscillator struct{}

func (oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (oscillator) Dims() (int, int) { return 2, 0 }

func run(t *testing.T, integ dynamo.Integrator, x dynamo.State, dt float64, steps int) dynamo.State {
	t.Helper()
	for i := 0; i < steps; i++ {
		next, err := integ.Step(oscillator{}, x, nil, float64(i)*dt, dt)
		require.NoError(t, err)
		x = next
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	x := run(t, NewRK4(), dynamo.State{1, 0}, 0.01, 100)
	assert.InDelta(t, math.Cos(1), x[0], 1e-8)
	assert.InDelta(t, -math.Sin(1), x[1], 1e-8)
}

func TestEulerSingleStep(t *testing.T) {
	x := dynamo.State{1.0, 0.5}
	next, err := NewEuler().Step(oscillator{}, x, nil, 0, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 1.0+0.5*0.1, next[0])
	assert.Equal(t, 0.5-1.0*0.1, next[1])
	assert.Equal(t, dynamo.State{1.0, 0.5}, x, "input must not change")
}

func TestRK4MoreAccurateThanEuler(t *testing.T) {
	const dt, steps = 0.05, 200
	tEnd := dt * steps
	exact := dynamo.State{math.Cos(tEnd), -math.Sin(tEnd)}

	errEuler := run(t, NewEuler(), dynamo.State{1, 0}, dt, steps).MaxAbsDiff(exact)
	errRK4 := run(t, NewRK4(), dynamo.State{1, 0}, dt, steps).MaxAbsDiff(exact)
	assert.Less(t, errRK4, errEuler)
}

func TestSteppersRejectWrongSizes(t *testing.T) {
	for name, integ := range map[string]dynamo.Integrator{"euler": NewEuler(), "rk4": NewRK4()} {
		_, err := integ.Step(oscillator{}, dynamo.State{1, 0, 0}, nil, 0, 0.1)
		assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch, name)
	}
}
