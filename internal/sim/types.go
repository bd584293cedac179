package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// Driver supplies the command for the next tick.
type Driver interface {
	Input(s vehicle.State, t float64) vehicle.Input
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(s vehicle.State, t float64) vehicle.Input

func (f DriverFunc) Input(s vehicle.State, t float64) vehicle.Input { return f(s, t) }

type Metric interface {
	Name() string
	Observe(s vehicle.State, in vehicle.Input, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s vehicle.State, in vehicle.Input, t float64)
}

// StopCondition ends a run early once it returns true for an accepted state.
type StopCondition func(s vehicle.State, t float64) bool

// StopAtDistance stops once the car is dist metres from the origin.
func StopAtDistance(dist float64) StopCondition {
	return func(s vehicle.State, t float64) bool {
		return s.X*s.X+s.Y*s.Y >= dist*dist
	}
}

// StopBelowSpeed stops once the car has slowed under v after moving.
func StopBelowSpeed(v float64) StopCondition {
	return func(s vehicle.State, t float64) bool {
		return t > 0 && s.Speed() < v
	}
}

// Recovery selects what the loop does when the model rejects a step.
type Recovery int

const (
	// RecoveryHalt stops and returns the partial result with the error.
	RecoveryHalt Recovery = iota
	// RecoveryHold keeps the last accepted state and tries again next tick.
	RecoveryHold
	// RecoveryReset restarts from the initial state.
	RecoveryReset
)

func (r Recovery) String() string {
	switch r {
	case RecoveryHalt:
		return "halt"
	case RecoveryHold:
		return "hold"
	case RecoveryReset:
		return "reset"
	}
	return fmt.Sprintf("Recovery(%d)", int(r))
}

func ParseRecovery(s string) (Recovery, error) {
	switch strings.ToLower(s) {
	case "", "halt":
		return RecoveryHalt, nil
	case "hold":
		return RecoveryHold, nil
	case "reset":
		return RecoveryReset, nil
	}
	return RecoveryHalt, fmt.Errorf("unknown recovery policy: %s", s)
}

type Config struct {
	Dt       float64
	Duration float64
	Recovery Recovery
	// MaxFailures bounds consecutive rejected steps under hold and reset.
	// Zero means no bound.
	MaxFailures int
}

func DefaultConfig() Config {
	return Config{
		Dt:          0.01,
		Duration:    10.0,
		Recovery:    RecoveryHalt,
		MaxFailures: 10,
	}
}

type Result struct {
	ID         string
	States     []vehicle.State
	Inputs     []vehicle.Input
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Failures   int
	Stopped    bool
}

// Final returns the last recorded state.
func (r *Result) Final() vehicle.State {
	if len(r.States) == 0 {
		return vehicle.State{}
	}
	return r.States[len(r.States)-1]
}

// Distance is the path length driven, summed over recorded states.
func (r *Result) Distance() float64 {
	d := 0.0
	for i := 1; i < len(r.States); i++ {
		d += math.Hypot(r.States[i].X-r.States[i-1].X, r.States[i].Y-r.States[i-1].Y)
	}
	return d
}

type SimError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e SimError) Unwrap() error { return e.Wrapped }
