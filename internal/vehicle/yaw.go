package vehicle

// YawMomentController produces the stabilizing yaw moment M_Tv applied by
// torque vectoring.
type YawMomentController interface {
	YawMoment(p Params, s State, in Input) float64
}

// ZeroYawMoment applies no stabilizing moment.
type ZeroYawMoment struct{}

func (ZeroYawMoment) YawMoment(Params, State, Input) float64 {
	return 0
}

// steeringTorqueTerm is the left/right front lateral force difference that
// multiplies sin(delta)*b_F/2 in the yaw balance. Single-track models carry
// one front force, so the difference is not modeled.
func steeringTorqueTerm() float64 {
	return 0
}
