package control

import "github.com/san-kum/vehsim/internal/vehicle"

type Constant struct {
	In vehicle.Input
}

func NewConstant(delta, dc float64) *Constant {
	return &Constant{In: vehicle.Input{Delta: delta, DC: dc}}
}

func (c *Constant) Input(s vehicle.State, t float64) vehicle.Input {
	return c.In
}
