package metrics

import (
	"math"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// PeakLateralAccel is the largest steady-state lateral acceleration
// |v_x * r| seen, in m/s^2.
type PeakLateralAccel struct {
	peak float64
}

func NewPeakLateralAccel() *PeakLateralAccel { return &PeakLateralAccel{} }

func (p *PeakLateralAccel) Name() string { return "peak_lateral_accel" }

func (p *PeakLateralAccel) Observe(x vehicle.State, u vehicle.Input, t float64) {
	p.peak = math.Max(p.peak, math.Abs(x.VX*x.R))
}

func (p *PeakLateralAccel) Value() float64 { return p.peak }
func (p *PeakLateralAccel) Reset()         { p.peak = 0 }

// TopSpeed is the largest planar speed seen.
type TopSpeed struct {
	peak float64
}

func NewTopSpeed() *TopSpeed { return &TopSpeed{} }

func (s *TopSpeed) Name() string { return "top_speed" }

func (s *TopSpeed) Observe(x vehicle.State, u vehicle.Input, t float64) {
	s.peak = math.Max(s.peak, x.Speed())
}

func (s *TopSpeed) Value() float64 { return s.peak }
func (s *TopSpeed) Reset()         { s.peak = 0 }

// Distance integrates speed over the observed ticks.
type Distance struct {
	total float64
	prevT float64
	prevV float64
	first bool
}

func NewDistance() *Distance { return &Distance{first: true} }

func (d *Distance) Name() string { return "distance" }

func (d *Distance) Observe(x vehicle.State, u vehicle.Input, t float64) {
	v := x.Speed()
	if !d.first {
		d.total += 0.5 * (v + d.prevV) * (t - d.prevT)
	}
	d.first = false
	d.prevT = t
	d.prevV = v
}

func (d *Distance) Value() float64 { return d.total }

func (d *Distance) Reset() {
	d.total = 0
	d.first = true
}

// FinishTime is the first time the car is at least dist metres from the
// origin, or -1 if it never gets there.
type FinishTime struct {
	dist float64
	t    float64
}

func NewFinishTime(dist float64) *FinishTime { return &FinishTime{dist: dist, t: -1} }

func (f *FinishTime) Name() string { return "finish_time" }

func (f *FinishTime) Observe(x vehicle.State, u vehicle.Input, t float64) {
	if f.t < 0 && math.Hypot(x.X, x.Y) >= f.dist {
		f.t = t
	}
}

func (f *FinishTime) Value() float64 { return f.t }
func (f *FinishTime) Reset()         { f.t = -1 }

// KinematicShare is the fraction of ticks in which the kinematic model
// contributes to the update.
type KinematicShare struct {
	blended int
	samples int
}

func NewKinematicShare() *KinematicShare { return &KinematicShare{} }

func (k *KinematicShare) Name() string { return "kinematic_share" }

func (k *KinematicShare) Observe(x vehicle.State, u vehicle.Input, t float64) {
	k.samples++
	if vehicle.KinematicBlend(x.Speed()) < 1 {
		k.blended++
	}
}

func (k *KinematicShare) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return float64(k.blended) / float64(k.samples)
}

func (k *KinematicShare) Reset() {
	k.blended = 0
	k.samples = 0
}
