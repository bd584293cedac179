package control

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/san-kum/vehsim/internal/dynamo"
)

// PID tracks Target with a parallel-form controller. The integral term is
// held within ±OutputLimit so it cannot wind up while the actuator saturates.
type PID struct {
	Kp, Ki, Kd  float64
	Target      float64
	OutputLimit float64

	integral float64
	lastErr  float64
	lastT    float64
	primed   bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, Target: target, OutputLimit: 1}
}

// Compute returns the output for a measurement taken at time t. The first
// call, and any call that does not move time forward, is proportional only.
func (p *PID) Compute(measured, t float64) float64 {
	e := p.Target - measured
	dt := t - p.lastT
	if !p.primed || dt <= 0 {
		p.primed = true
		p.lastErr, p.lastT = e, t
		return p.Kp*e + p.Ki*p.integral
	}

	p.integral += e * dt
	if p.Ki != 0 && p.OutputLimit > 0 {
		bound := p.OutputLimit / math.Abs(p.Ki)
		p.integral = lo.Clamp(p.integral, -bound, bound)
	}
	de := (e - p.lastErr) / dt
	p.lastErr, p.lastT = e, t

	return p.Kp*e + p.Ki*p.integral + p.Kd*de
}

func (p *PID) Reset() {
	p.integral, p.lastErr, p.lastT = 0, 0, 0
	p.primed = false
}

func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":           p.Kp,
		"ki":           p.Ki,
		"kd":           p.Kd,
		"target":       p.Target,
		"output_limit": p.OutputLimit,
	}
}

func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	case "output_limit":
		p.OutputLimit = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
