package control

import (
	"github.com/samber/lo"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// LaneKeep steers onto the line y = Offset (heading along +x) with linear
// state feedback delta = -K·(y - Offset, yaw, v_y, r). Offset may be changed
// between ticks for a lane change.
type LaneKeep struct {
	K        [4]float64
	Offset   float64
	MaxSteer float64
	Speed    *PID
}

func NewLaneKeep(k [4]float64, offset, maxSteer float64, speed *PID) *LaneKeep {
	return &LaneKeep{K: k, Offset: offset, MaxSteer: maxSteer, Speed: speed}
}

func (l *LaneKeep) Input(s vehicle.State, t float64) vehicle.Input {
	e := [4]float64{s.Y - l.Offset, s.Yaw, s.VY, s.R}
	delta := 0.0
	for i := range e {
		delta -= l.K[i] * e[i]
	}
	if l.MaxSteer > 0 {
		delta = lo.Clamp(delta, -l.MaxSteer, l.MaxSteer)
	}

	in := vehicle.Input{Delta: delta}
	if l.Speed != nil {
		in.DC = lo.Clamp(l.Speed.Compute(s.VX, t), -1.0, 1.0)
	}
	return in
}

func (l *LaneKeep) Reset() {
	if l.Speed != nil {
		l.Speed.Reset()
	}
}
