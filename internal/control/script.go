package control

import (
	"math"
	"sort"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// Segment holds a command from its start time until the next segment.
type Segment struct {
	Start float64 `yaml:"start"`
	Delta float64 `yaml:"delta"`
	DC    float64 `yaml:"dc"`
}

// Script replays time-stamped commands. Before the first segment the
// command is zero.
type Script struct {
	segments []Segment
}

func NewScript(segments []Segment) *Script {
	s := make([]Segment, len(segments))
	copy(s, segments)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Start < s[j].Start })
	return &Script{segments: s}
}

func (s *Script) Input(st vehicle.State, t float64) vehicle.Input {
	i := sort.Search(len(s.segments), func(i int) bool { return s.segments[i].Start > t })
	if i == 0 {
		return vehicle.Input{}
	}
	seg := s.segments[i-1]
	return vehicle.Input{Delta: seg.Delta, DC: seg.DC}
}

// SineSteer sweeps the steering sinusoidally at constant throttle.
type SineSteer struct {
	Amplitude float64
	Frequency float64 // Hz
	DC        float64
}

func NewSineSteer(amplitude, frequency, dc float64) *SineSteer {
	return &SineSteer{Amplitude: amplitude, Frequency: frequency, DC: dc}
}

func (s *SineSteer) Input(st vehicle.State, t float64) vehicle.Input {
	return vehicle.Input{
		Delta: s.Amplitude * math.Sin(2*math.Pi*s.Frequency*t),
		DC:    s.DC,
	}
}
