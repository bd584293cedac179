package control

import (
	"math"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// Skidpad drives a circle of the given radius at a target speed. Steering
// is the Ackermann angle for the radius; the speed loop is a Cruise.
type Skidpad struct {
	cruise *Cruise
	Radius float64
}

func NewSkidpad(k vehicle.Kinematic, radius float64, speed *PID) *Skidpad {
	delta := math.Atan(k.L() / radius)
	return &Skidpad{cruise: NewCruise(speed, delta), Radius: radius}
}

func (s *Skidpad) Input(st vehicle.State, t float64) vehicle.Input {
	return s.cruise.Input(st, t)
}

// Reset clears the speed loop.
func (s *Skidpad) Reset() { s.cruise.Reset() }

// Steering returns the fixed steering angle.
func (s *Skidpad) Steering() float64 {
	return s.cruise.Delta
}
