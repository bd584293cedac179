package metrics

import (
	"math"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// KineticEnergy reports the peak translational plus yaw kinetic energy.
type KineticEnergy struct {
	name string
	p    vehicle.Params
	peak float64
}

func NewKineticEnergy(p vehicle.Params) *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy", p: p}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(x vehicle.State, u vehicle.Input, t float64) {
	e.peak = math.Max(e.peak, Energy(e.p, x))
}

func (e *KineticEnergy) Value() float64 { return e.peak }

func (e *KineticEnergy) Reset() { e.peak = 0 }

func Energy(p vehicle.Params, x vehicle.State) float64 {
	return 0.5*p.Inertia.M*(x.VX*x.VX+x.VY*x.VY) + 0.5*p.Inertia.Iz*x.R*x.R
}
