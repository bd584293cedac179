package vehicle

import "math"

// LateralFriction evaluates the magic-formula lateral friction coefficient.
// Its magnitude never exceeds |D|.
func (t Tire) LateralFriction(slip float64) float64 {
	return t.D * math.Sin(t.C*math.Atan(t.B*(1.0-t.E)*slip+t.E*math.Atan(t.B*slip)))
}

// WheelLoad is the normal load on one wheel of an axle carrying fraction of Fz.
func WheelLoad(fz, fraction float64) float64 {
	return 0.5 * fraction * fz
}

// WheelLateralForce is the lateral force of one tire.
func WheelLateralForce(t Tire, slip, fz, fraction float64) float64 {
	return WheelLoad(fz, fraction) * t.LateralFriction(slip)
}

// AxleLateralForce is the total lateral force of a two-wheel axle.
func AxleLateralForce(t Tire, slip, fz, fraction float64) float64 {
	return 2 * WheelLateralForce(t, slip, fz, fraction)
}
