package vehicle

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/vehsim/internal/dynamo"
)

type Inertia struct {
	M  float64 `yaml:"m"`
	Iz float64 `yaml:"I_z"`
	G  float64 `yaml:"g"`
}

type Kinematic struct {
	LF     float64 `yaml:"l_F"`
	LR     float64 `yaml:"l_R"`
	BF     float64 `yaml:"b_F"`
	WFront float64 `yaml:"w_front"`
	// AxleLoadSplit loads the rear tires with 1-w_front. When false the rear
	// axle reuses w_front.
	AxleLoadSplit bool `yaml:"axle_load_split"`
}

// L is the wheelbase.
func (k Kinematic) L() float64 {
	return k.LF + k.LR
}

type Aero struct {
	CDown float64 `yaml:"c_down"`
	CDrag float64 `yaml:"c_drag"`
}

type DriveTrain struct {
	Cm1     float64 `yaml:"cm1"`
	Cr0     float64 `yaml:"cr0"`
	MLonAdd float64 `yaml:"m_lon_add"`
}

// Tire holds the Pacejka shape constants of the lateral friction curve.
type Tire struct {
	B float64 `yaml:"B"`
	C float64 `yaml:"C"`
	D float64 `yaml:"D"`
	E float64 `yaml:"E"`
}

type TorqueVectoring struct {
	Shrinkage  float64 `yaml:"shrinkage"`
	KStability float64 `yaml:"K_stability"`
}

// Limits bound the accepted state. Zero disables a bound.
type Limits struct {
	MaxSpeed   float64 `yaml:"max_speed"`
	MaxYawRate float64 `yaml:"max_yaw_rate"`
}

// Params is the immutable parameter block of one vehicle instance.
type Params struct {
	Inertia         Inertia         `yaml:"inertia"`
	Kinematic       Kinematic       `yaml:"kinematics"`
	Aero            Aero            `yaml:"aero"`
	DriveTrain      DriveTrain      `yaml:"drivetrain"`
	Tire            Tire            `yaml:"tire"`
	TorqueVectoring TorqueVectoring `yaml:"torque_vectoring"`
	Limits          Limits          `yaml:"limits"`
}

// DefaultParams describes a formula-student class car.
func DefaultParams() Params {
	return Params{
		Inertia: Inertia{M: 190, Iz: 110, G: 9.81},
		Kinematic: Kinematic{
			LF:     0.869,
			LR:     0.711,
			BF:     1.22,
			WFront: 0.45,
		},
		Aero:            Aero{CDown: 1.9, CDrag: 1.0},
		DriveTrain:      DriveTrain{Cm1: 5000, Cr0: 180, MLonAdd: 0},
		Tire:            Tire{B: 12.56, C: -1.38, D: 1.6, E: -0.58},
		TorqueVectoring: TorqueVectoring{Shrinkage: 0.5, KStability: 0.002},
		Limits:          Limits{MaxSpeed: 150, MaxYawRate: 50},
	}
}

// MLon is the effective longitudinal mass.
func (p Params) MLon() float64 {
	return p.Inertia.M + p.DriveTrain.MLonAdd
}

// FrontLoadFraction is the share of the normal load carried by the front axle.
func (p Params) FrontLoadFraction() float64 {
	return p.Kinematic.WFront
}

// RearLoadFraction is the share of the normal load used for the rear tires.
// It equals the front fraction unless AxleLoadSplit is set.
func (p Params) RearLoadFraction() float64 {
	if p.Kinematic.AxleLoadSplit {
		return 1 - p.Kinematic.WFront
	}
	return p.Kinematic.WFront
}

// Validate rejects parameter blocks no physical vehicle can have. Models do
// not call it; parameter sources do.
func (p Params) Validate() error {
	for name, v := range p.GetParams() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, v)
		}
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"m", p.Inertia.M},
		{"I_z", p.Inertia.Iz},
		{"l_F", p.Kinematic.LF},
		{"l_R", p.Kinematic.LR},
	}
	for _, c := range positive {
		if c.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", dynamo.ErrParameterBounds, c.name, c.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"g", p.Inertia.G},
		{"c_down", p.Aero.CDown},
		{"c_drag", p.Aero.CDrag},
		{"cm1", p.DriveTrain.Cm1},
		{"cr0", p.DriveTrain.Cr0},
		{"m_lon_add", p.DriveTrain.MLonAdd},
		{"max_speed", p.Limits.MaxSpeed},
		{"max_yaw_rate", p.Limits.MaxYawRate},
	}
	for _, c := range nonNegative {
		if c.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", dynamo.ErrParameterBounds, c.name, c.v)
		}
	}

	if p.Kinematic.WFront < 0 || p.Kinematic.WFront > 1 {
		return fmt.Errorf("%w: w_front must be in [0, 1], got %v", dynamo.ErrParameterBounds, p.Kinematic.WFront)
	}
	return nil
}

func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"m":            &p.Inertia.M,
		"I_z":          &p.Inertia.Iz,
		"g":            &p.Inertia.G,
		"l_F":          &p.Kinematic.LF,
		"l_R":          &p.Kinematic.LR,
		"b_F":          &p.Kinematic.BF,
		"w_front":      &p.Kinematic.WFront,
		"c_down":       &p.Aero.CDown,
		"c_drag":       &p.Aero.CDrag,
		"cm1":          &p.DriveTrain.Cm1,
		"cr0":          &p.DriveTrain.Cr0,
		"m_lon_add":    &p.DriveTrain.MLonAdd,
		"B":            &p.Tire.B,
		"C":            &p.Tire.C,
		"D":            &p.Tire.D,
		"E":            &p.Tire.E,
		"shrinkage":    &p.TorqueVectoring.Shrinkage,
		"K_stability":  &p.TorqueVectoring.KStability,
		"max_speed":    &p.Limits.MaxSpeed,
		"max_yaw_rate": &p.Limits.MaxYawRate,
	}
}

func (p *Params) GetParams() map[string]float64 {
	out := make(map[string]float64)
	for name, ptr := range p.fields() {
		out[name] = *ptr
	}
	return out
}

func (p *Params) SetParam(name string, value float64) error {
	ptr, ok := p.fields()[name]
	if !ok {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	*ptr = value
	return nil
}

// ParamNames lists the names accepted by SetParam in sorted order.
func ParamNames() []string {
	var p Params
	names := make([]string, 0, len(p.fields()))
	for name := range p.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
