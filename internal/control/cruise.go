package control

import (
	"github.com/samber/lo"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// Cruise holds a target speed with a PID on v_x and a fixed steering angle.
type Cruise struct {
	Speed *PID
	Delta float64
}

func NewCruise(speed *PID, delta float64) *Cruise {
	return &Cruise{Speed: speed, Delta: delta}
}

func (c *Cruise) Input(s vehicle.State, t float64) vehicle.Input {
	dc := lo.Clamp(c.Speed.Compute(s.VX, t), -1.0, 1.0)
	return vehicle.Input{Delta: c.Delta, DC: dc}
}

func (c *Cruise) Reset() {
	c.Speed.Reset()
}
