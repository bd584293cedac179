package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/metrics"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// Experiment is one configured run: a model instance, its driver and the
// host loop around them.
type Experiment struct {
	cfg       *config.Config
	params    vehicle.Params
	simCfg    sim.Config
	driver    sim.Driver
	simulator *sim.Simulator
}

// New builds an experiment with the vehicle named by the config.
func New(reg *Registry, cfg *config.Config, opts ...sim.Option) (*Experiment, error) {
	p, err := cfg.GetVehicle()
	if err != nil {
		return nil, err
	}
	return NewWithParams(reg, cfg, p, opts...)
}

// NewWithParams builds an experiment with explicit vehicle parameters.
func NewWithParams(reg *Registry, cfg *config.Config, p vehicle.Params, opts ...sim.Option) (*Experiment, error) {
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}

	model, err := reg.GetModel(cfg.Model, cfg.Integrator, cfg.YawControl, p)
	if err != nil {
		return nil, err
	}
	driver, err := reg.GetDriver(cfg.Driver, cfg.DriverParams, p)
	if err != nil {
		return nil, err
	}

	s := sim.New(model, driver, opts...)

	ms := reg.DefaultMetrics(p)
	if len(cfg.Metrics) > 0 {
		ms = ms[:0]
		for _, name := range cfg.Metrics {
			m, err := metrics.New(name, p)
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
	}
	for _, m := range ms {
		s.AddMetric(m)
	}

	if cfg.StopDistance > 0 {
		s.AddStopCondition(sim.StopAtDistance(cfg.StopDistance))
	}
	if cfg.StopSpeed > 0 {
		s.AddStopCondition(sim.StopBelowSpeed(cfg.StopSpeed))
	}

	return &Experiment{
		cfg:       cfg,
		params:    p,
		simCfg:    simCfg,
		driver:    driver,
		simulator: s,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.GetInitState(), e.simCfg)
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Driver() sim.Driver { return e.driver }

func (e *Experiment) Params() vehicle.Params { return e.params }

func (e *Experiment) SimConfig() sim.Config { return e.simCfg }
