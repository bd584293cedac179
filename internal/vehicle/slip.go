package vehicle

import "math"

// SlipAngleProvider supplies the front and rear slip angles for a state and
// steering angle. Implementations must be free of side effects.
type SlipAngleProvider interface {
	SlipAngles(s State, delta float64) (front, rear float64)
}

// GeometricSlip derives slip angles from the velocity at each axle.
type GeometricSlip struct {
	LF, LR float64
}

func NewGeometricSlip(k Kinematic) GeometricSlip {
	return GeometricSlip{LF: k.LF, LR: k.LR}
}

func (g GeometricSlip) SlipAngles(s State, delta float64) (front, rear float64) {
	vx := math.Abs(s.VX)
	front = math.Atan2(s.VY+g.LF*s.R, vx) - delta
	rear = math.Atan2(s.VY-g.LR*s.R, vx)
	return front, rear
}
