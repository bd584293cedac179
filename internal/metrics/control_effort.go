package metrics

import (
	"math"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// ControlEffort is the mean of |delta| + |dc| over the run. Steering is in
// radians and throttle is a duty cycle, so both sit on comparable scales.
type ControlEffort struct {
	total float64
	n     int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(_ vehicle.State, in vehicle.Input, _ float64) {
	c.total += math.Abs(in.Delta) + math.Abs(in.DC)
	c.n++
}

func (c *ControlEffort) Value() float64 {
	if c.n == 0 {
		return 0
	}
	return c.total / float64(c.n)
}

func (c *ControlEffort) Reset() { *c = ControlEffort{} }
