package control

import (
	"github.com/san-kum/vehsim/internal/vehicle"
)

// TorqueVectoring tracks the steady-state yaw rate of a neutral-steer car,
// softened at speed by K_stability. The moment is the yaw-rate error times
// I_z scaled by shrinkage.
type TorqueVectoring struct{}

func (TorqueVectoring) YawMoment(p vehicle.Params, s vehicle.State, in vehicle.Input) float64 {
	return p.TorqueVectoring.Shrinkage * p.Inertia.Iz * (ReferenceYawRate(p, s, in) - s.R)
}

// ReferenceYawRate is the yaw-rate target used by TorqueVectoring.
func ReferenceYawRate(p vehicle.Params, s vehicle.State, in vehicle.Input) float64 {
	return s.VX * in.Delta / (p.Kinematic.L() * (1 + p.TorqueVectoring.KStability*s.VX*s.VX))
}
