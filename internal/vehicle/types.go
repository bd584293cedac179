package vehicle

import (
	"math"

	"github.com/san-kum/vehsim/internal/dynamo"
)

// Indices into the flat state vector used by the steppers.
const (
	IdxX = iota
	IdxY
	IdxYaw
	IdxVX
	IdxVY
	IdxR
	IdxAX
	IdxAY
	StateDim
)

const ControlDim = 2

// State is the motion state of the vehicle. Positions are world frame,
// velocities body frame.
type State struct {
	X   float64 `yaml:"x" json:"x"`
	Y   float64 `yaml:"y" json:"y"`
	Yaw float64 `yaml:"yaw" json:"yaw"`
	VX  float64 `yaml:"v_x" json:"v_x"`
	VY  float64 `yaml:"v_y" json:"v_y"`
	R   float64 `yaml:"r" json:"r"`
	AX  float64 `yaml:"a_x" json:"a_x"`
	AY  float64 `yaml:"a_y" json:"a_y"`
}

// Input is the driver command for one tick.
type Input struct {
	Delta float64 `yaml:"delta" json:"delta"`
	DC    float64 `yaml:"dc" json:"dc"`
}

// Speed is the magnitude of the body-frame velocity.
func (s State) Speed() float64 {
	return math.Hypot(s.VX, s.VY)
}

func (s State) Vector() dynamo.State {
	return dynamo.State{s.X, s.Y, s.Yaw, s.VX, s.VY, s.R, s.AX, s.AY}
}

func StateFromVector(x dynamo.State) State {
	if len(x) < StateDim {
		return State{}
	}
	return State{
		X:   x[IdxX],
		Y:   x[IdxY],
		Yaw: x[IdxYaw],
		VX:  x[IdxVX],
		VY:  x[IdxVY],
		R:   x[IdxR],
		AX:  x[IdxAX],
		AY:  x[IdxAY],
	}
}

// fields lists every state component with its name, in vector order.
func (s State) fields() [StateDim]struct {
	name  string
	value float64
} {
	return [StateDim]struct {
		name  string
		value float64
	}{
		{"x", s.X}, {"y", s.Y}, {"yaw", s.Yaw},
		{"v_x", s.VX}, {"v_y", s.VY}, {"r", s.R},
		{"a_x", s.AX}, {"a_y", s.AY},
	}
}

func (in Input) Control() dynamo.Control {
	return dynamo.Control{in.Delta, in.DC}
}

func InputFromControl(u dynamo.Control) Input {
	var in Input
	if len(u) >= 1 {
		in.Delta = u[0]
	}
	if len(u) >= 2 {
		in.DC = u[1]
	}
	return in
}
