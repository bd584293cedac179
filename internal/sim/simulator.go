package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/san-kum/vehsim/internal/vehicle"
)

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// Simulator is the host loop around one vehicle model. It owns the model
// instance and is not safe for concurrent runs.
type Simulator struct {
	model     vehicle.Model
	driver    Driver
	metrics   []Metric
	observers []Observer
	stops     []StopCondition
	log       *log.Logger
}

func New(model vehicle.Model, driver Driver, opts ...Option) *Simulator {
	s := &Simulator{
		model:     model,
		driver:    driver,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)               { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)           { s.observers = append(s.observers, o) }
func (s *Simulator) AddStopCondition(c StopCondition) { s.stops = append(s.stops, c) }

func (s *Simulator) Model() vehicle.Model { return s.model }

// Step asks the driver for a command and advances the model once.
func (s *Simulator) Step(x vehicle.State, t, dt float64) (vehicle.State, vehicle.Input, error) {
	in := s.driver.Input(x, t)
	next, err := s.model.Advance(x, in, dt)
	return next, in, err
}

// shouldStop is checked after metrics and observers have seen the state,
// so the state that ends a run is always observed.
func (s *Simulator) shouldStop(x vehicle.State, t float64) bool {
	for _, stop := range s.stops {
		if stop(x, t) {
			return true
		}
	}
	return false
}

type resetter interface {
	Reset()
}

func (s *Simulator) Run(ctx context.Context, x0 vehicle.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	result := &Result{
		ID:      uuid.NewString(),
		States:  make([]vehicle.State, 0, steps+1),
		Inputs:  make([]vehicle.Input, 0, steps),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}
	logger := s.log.With("run", result.ID[:8])

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0
	t := 0.0
	dt := cfg.Dt
	consecutive := 0

	result.States = append(result.States, x)
	result.Times = append(result.Times, t)

	var runErr error
loop:
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		default:
		}

		in := s.driver.Input(x, t)
		for _, m := range s.metrics {
			m.Observe(x, in, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, in, t)
		}
		if s.shouldStop(x, t) {
			result.Stopped = true
			break loop
		}

		next, err := s.model.Advance(x, in, dt)
		if err != nil {
			result.Failures++
			consecutive++
			serr := SimError{Step: i, Time: t, Wrapped: err}
			logger.Warn("step rejected", "step", i, "t", t, "policy", cfg.Recovery, "err", err)

			if cfg.Recovery == RecoveryHalt ||
				(cfg.MaxFailures > 0 && consecutive >= cfg.MaxFailures) {
				runErr = serr
				break loop
			}
			switch cfg.Recovery {
			case RecoveryHold:
				next = x
			case RecoveryReset:
				next = x0
				if r, ok := s.driver.(resetter); ok {
					r.Reset()
				}
			}
		} else {
			consecutive = 0
		}

		x = next
		t = float64(i+1) * dt
		result.StepsTaken++

		result.States = append(result.States, x)
		result.Inputs = append(result.Inputs, in)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	logger.Debug("run complete",
		"steps", result.StepsTaken,
		"t", t,
		"failures", result.Failures,
		"stopped", result.Stopped)

	return result, runErr
}

// RunWithCallback drives the model until the callback returns false, the
// duration elapses or a step is rejected. No history is kept.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 vehicle.State, cfg Config, callback func(vehicle.State, vehicle.Input, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	x := x0
	steps := int(cfg.Duration/cfg.Dt + 1e-9)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		next, in, err := s.Step(x, t, cfg.Dt)
		if err != nil {
			return SimError{Step: i, Time: t, Wrapped: err}
		}
		if !callback(x, in, t) {
			return nil
		}
		x = next
	}
	return nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", vehicle.ErrInvalidInput, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", vehicle.ErrInvalidInput, cfg.Duration)
	}
	if cfg.MaxFailures < 0 {
		return fmt.Errorf("%w: max failures must not be negative", vehicle.ErrInvalidInput)
	}
	return nil
}
