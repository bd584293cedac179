package vehicle

// NormalForce is the total vertical load: weight plus speed-squared downforce.
func NormalForce(p Params, s State) float64 {
	return p.Inertia.G*p.Inertia.M + Downforce(p, s)
}

func Downforce(p Params, s State) float64 {
	return p.Aero.CDown * s.VX * s.VX
}

func Drag(p Params, s State) float64 {
	return p.Aero.CDrag * s.VX * s.VX
}

// RollingResistance is cr0 whenever the car is moving; a car at rest feels
// none, so zero input leaves it at rest.
func RollingResistance(p Params, s State) float64 {
	if s.VX == 0 {
		return 0
	}
	return p.DriveTrain.Cr0
}

// EffectiveDutyCycle drops braking commands while stationary or rolling
// backwards so the motor never drives the car in reverse.
func EffectiveDutyCycle(s State, in Input) float64 {
	if s.VX <= 0 && in.DC < 0 {
		return 0
	}
	return in.DC
}

// LongitudinalForce is the drivetrain force minus drag and rolling resistance.
func LongitudinalForce(p Params, s State, in Input) float64 {
	return EffectiveDutyCycle(s, in)*p.DriveTrain.Cm1 - Drag(p, s) - RollingResistance(p, s)
}
