package integrators

import "github.com/san-kum/vehsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. It keeps its stage
// buffers between calls, so one instance serves one model at a time.
type RK4 struct {
	stages [4]dynamo.State
	probe  dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) grow(n int) {
	if len(r.probe) == n {
		return
	}
	for i := range r.stages {
		r.stages[i] = make(dynamo.State, n)
	}
	r.probe = make(dynamo.State, n)
}

// stage evaluates f at x + h*prev into stages[k].
func (r *RK4) stage(k int, sys dynamo.System, x, prev dynamo.State, u dynamo.Control, t, h float64) {
	for i := range x {
		r.probe[i] = x[i] + h*prev[i]
	}
	copy(r.stages[k], sys.Derive(r.probe, u, t))
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, error) {
	if err := dynamo.CheckDims(sys, x, u); err != nil {
		return nil, err
	}
	r.grow(len(x))

	half := 0.5 * dt
	copy(r.stages[0], sys.Derive(x, u, t))
	r.stage(1, sys, x, r.stages[0], u, t+half, half)
	r.stage(2, sys, x, r.stages[1], u, t+half, half)
	r.stage(3, sys, x, r.stages[2], u, t+dt, dt)

	k1, k2, k3, k4 := r.stages[0], r.stages[1], r.stages[2], r.stages[3]
	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out, nil
}
