package vehicle

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/integrators"
)

const (
	// blendOnset is the speed below which the kinematic model takes over
	// completely; blending is complete at blendOnset + 1/blendGain.
	blendOnset = 1.5
	blendGain  = 0.5

	// minCouplingSpeed floors v_x in the r*v_x term of the lateral balance.
	minCouplingSpeed = 1.0
)

// Model advances a vehicle state by one tick. Implementations never mutate
// the given state; on error the caller keeps its previous state.
type Model interface {
	Advance(s State, in Input, dt float64) (State, error)
	Params() Params
}

// KinematicBlend is the weight of the dynamic prediction at a given speed.
func KinematicBlend(speed float64) float64 {
	return lo.Clamp((speed-blendOnset)*blendGain, 0.0, 1.0)
}

type Option func(*Bicycle)

func WithSlipAngleProvider(p SlipAngleProvider) Option {
	return func(b *Bicycle) { b.slip = p }
}

func WithYawMomentController(c YawMomentController) Option {
	return func(b *Bicycle) { b.yaw = c }
}

// WithIntegrator replaces the explicit Euler step of the dynamic model.
func WithIntegrator(i dynamo.Integrator) Option {
	return func(b *Bicycle) { b.stepper = i }
}

// Bicycle is the single-track vehicle model. Below walking pace the
// tire-slip dynamics are ill-conditioned, so its velocities are blended
// towards a no-slip kinematic prediction as speed drops.
type Bicycle struct {
	params  Params
	slip    SlipAngleProvider
	yaw     YawMomentController
	stepper dynamo.Integrator
	blend   func(speed float64) float64
}

func NewBicycle(p Params, opts ...Option) *Bicycle {
	b := &Bicycle{
		params:  p,
		slip:    NewGeometricSlip(p.Kinematic),
		yaw:     ZeroYawMoment{},
		stepper: integrators.NewEuler(),
		blend:   KinematicBlend,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewDynamic returns the force-based model without low-speed correction.
func NewDynamic(p Params, opts ...Option) *Bicycle {
	b := NewBicycle(p, opts...)
	b.blend = func(float64) float64 { return 1 }
	return b
}

// NewKinematic returns the no-slip model: velocities follow the steering
// geometry and the drivetrain only.
func NewKinematic(p Params, opts ...Option) *Bicycle {
	b := NewBicycle(p, opts...)
	b.blend = func(float64) float64 { return 0 }
	return b
}

func (b *Bicycle) Params() Params { return b.params }

func (b *Bicycle) Dims() (int, int) { return StateDim, ControlDim }

// Forces are the per-tick force terms of the single-track balance.
type Forces struct {
	Fz     float64
	AlphaF float64
	AlphaR float64
	FyF    float64 // front axle total
	FyR    float64 // rear axle total
	Fx     float64
	MTv    float64
}

func (b *Bicycle) Forces(s State, in Input) Forces {
	p := b.params
	fz := NormalForce(p, s)
	alphaF, alphaR := b.slip.SlipAngles(s, in.Delta)

	return Forces{
		Fz:     fz,
		AlphaF: alphaF,
		AlphaR: alphaR,
		FyF:    AxleLateralForce(p.Tire, alphaF, fz, p.FrontLoadFraction()),
		FyR:    AxleLateralForce(p.Tire, alphaR, fz, p.RearLoadFraction()),
		Fx:     LongitudinalForce(p, s, in),
		MTv:    b.yaw.YawMoment(p, s, in),
	}
}

// Derive is the rigid-body single-track derivative. Accelerations are
// reported, not integrated, so their rates are zero.
func (b *Bicycle) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	s := StateFromVector(x)
	in := InputFromControl(u)
	f := b.Forces(s, in)
	p := b.params

	vxEff := math.Max(minCouplingSpeed, s.VX)
	mLon := p.MLon()
	sinD, cosD := math.Sin(in.Delta), math.Cos(in.Delta)
	world := mgl64.Rotate2D(s.Yaw).Mul2x1(mgl64.Vec2{s.VX, s.VY})

	dx := make(dynamo.State, StateDim)
	dx[IdxX] = world.X()
	dx[IdxY] = world.Y()
	dx[IdxYaw] = s.R
	dx[IdxVX] = s.R*s.VY + (f.Fx-sinD*f.FyF)/mLon
	dx[IdxVY] = (cosD*f.FyF+f.FyR)/p.Inertia.M - s.R*vxEff
	dx[IdxR] = (cosD*f.FyF*p.Kinematic.LF +
		sinD*steeringTorqueTerm()*0.5*p.Kinematic.BF -
		f.FyR*p.Kinematic.LR +
		f.MTv) / p.Inertia.Iz
	dx[IdxAX] = 0
	dx[IdxAY] = 0
	return dx
}

// Advance returns the state one tick of length dt later.
func (b *Bicycle) Advance(s State, in Input, dt float64) (State, error) {
	if !(dt > 0) {
		return State{}, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidInput, dt)
	}

	fx := LongitudinalForce(b.params, s, in)
	x, err := b.stepper.Step(b, s.Vector(), in.Control(), 0, dt)
	if err != nil {
		return State{}, err
	}
	next := b.correct(StateFromVector(x), s, in, fx, dt)

	if err := b.params.Limits.Check(next); err != nil {
		return State{}, err
	}
	return next, nil
}

// correct blends the dynamic velocities towards the kinematic prediction
// made from the pre-step state. Pose comes from the dynamic step unchanged.
func (b *Bicycle) correct(dyn, prev State, in Input, fx, dt float64) State {
	k := b.params.Kinematic
	blend := b.blend(prev.Speed())

	vxKin := prev.VX + dt*(fx/b.params.MLon())
	tanD := math.Tan(in.Delta)
	vyKin := tanD * vxKin * k.LR / k.L()
	rKin := tanD * vxKin / k.L()

	out := dyn
	out.VX = blend*dyn.VX + (1-blend)*vxKin
	out.VY = blend*dyn.VY + (1-blend)*vyKin
	out.R = blend*dyn.R + (1-blend)*rKin
	return out
}
