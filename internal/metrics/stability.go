package metrics

import (
	"math"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// Stability is the share of moving samples whose body sideslip stays
// within threshold (radians).
type Stability struct {
	name       string
	threshold  float64
	minSpeed   float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
		minSpeed:  1.0,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x vehicle.State, u vehicle.Input, t float64) {
	if x.Speed() < s.minSpeed {
		return
	}
	s.samples++
	if math.Abs(Sideslip(x)) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Sideslip is the angle between the heading and the velocity.
func Sideslip(x vehicle.State) float64 {
	return math.Atan2(x.VY, math.Abs(x.VX))
}
