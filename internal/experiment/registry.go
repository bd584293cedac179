package experiment

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/integrators"
	"github.com/san-kum/vehsim/internal/metrics"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

type (
	ModelFactory  func(p vehicle.Params, opts ...vehicle.Option) vehicle.Model
	DriverFactory func(dp config.DriverConfig, p vehicle.Params) sim.Driver
)

type Registry struct {
	models      map[string]ModelFactory
	integrators map[string]func() dynamo.Integrator
	drivers     map[string]DriverFactory
	yaw         map[string]func() vehicle.YawMomentController
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]ModelFactory),
		integrators: make(map[string]func() dynamo.Integrator),
		drivers:     make(map[string]DriverFactory),
		yaw:         make(map[string]func() vehicle.YawMomentController),
	}

	r.models["bicycle"] = func(p vehicle.Params, opts ...vehicle.Option) vehicle.Model {
		return vehicle.NewBicycle(p, opts...)
	}
	r.models["dynamic"] = func(p vehicle.Params, opts ...vehicle.Option) vehicle.Model {
		return vehicle.NewDynamic(p, opts...)
	}
	r.models["kinematic"] = func(p vehicle.Params, opts ...vehicle.Option) vehicle.Model {
		return vehicle.NewKinematic(p, opts...)
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	r.drivers["constant"] = func(dp config.DriverConfig, _ vehicle.Params) sim.Driver {
		return control.NewConstant(dp.Delta, dp.DC)
	}
	r.drivers["cruise"] = func(dp config.DriverConfig, _ vehicle.Params) sim.Driver {
		return control.NewCruise(speedPID(dp), dp.Delta)
	}
	r.drivers["skidpad"] = func(dp config.DriverConfig, p vehicle.Params) sim.Driver {
		return control.NewSkidpad(p.Kinematic, dp.Radius, speedPID(dp))
	}
	r.drivers["sine"] = func(dp config.DriverConfig, _ vehicle.Params) sim.Driver {
		return control.NewSineSteer(dp.Amplitude, dp.Frequency, dp.DC)
	}
	r.drivers["script"] = func(dp config.DriverConfig, _ vehicle.Params) sim.Driver {
		return control.NewScript(dp.Script)
	}
	r.drivers["lanekeep"] = func(dp config.DriverConfig, _ vehicle.Params) sim.Driver {
		return control.NewLaneKeep(dp.Gains, dp.Offset, dp.MaxSteer, speedPID(dp))
	}
	r.drivers["manual"] = func(dp config.DriverConfig, _ vehicle.Params) sim.Driver {
		m := control.NewManual(dp.MaxSteer)
		m.Set(vehicle.Input{Delta: dp.Delta, DC: dp.DC})
		return m
	}

	r.yaw["none"] = func() vehicle.YawMomentController { return vehicle.ZeroYawMoment{} }
	r.yaw["torque_vectoring"] = func() vehicle.YawMomentController { return control.TorqueVectoring{} }

	return r
}

func speedPID(dp config.DriverConfig) *control.PID {
	return control.NewPID(dp.Kp, dp.Ki, dp.Kd, dp.TargetSpeed)
}

// GetModel builds a fresh model instance. Every call returns a new
// integrator too, so instances never share scratch buffers.
func (r *Registry) GetModel(name, integrator, yaw string, p vehicle.Params) (vehicle.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	integ, err := r.GetIntegrator(integrator)
	if err != nil {
		return nil, err
	}
	yc, err := r.GetYawController(yaw)
	if err != nil {
		return nil, err
	}
	return fn(p, vehicle.WithIntegrator(integ), vehicle.WithYawMomentController(yc)), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetDriver(name string, dp config.DriverConfig, p vehicle.Params) (sim.Driver, error) {
	fn, ok := r.drivers[name]
	if !ok {
		return nil, fmt.Errorf("unknown driver: %s", name)
	}
	return fn(dp, p), nil
}

func (r *Registry) GetYawController(name string) (vehicle.YawMomentController, error) {
	if name == "" {
		name = "none"
	}
	fn, ok := r.yaw[name]
	if !ok {
		return nil, fmt.Errorf("unknown yaw controller: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string      { return sortedKeys(r.models) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListDrivers() []string     { return sortedKeys(r.drivers) }
func (r *Registry) ListYawControllers() []string {
	return sortedKeys(r.yaw)
}

func sortedKeys[V any](m map[string]V) []string {
	names := lo.Keys(m)
	slices.Sort(names)
	return names
}

// DefaultMetrics are collected when a run names none.
func (r *Registry) DefaultMetrics(p vehicle.Params) []sim.Metric {
	return []sim.Metric{
		metrics.NewStability(0.15),
		metrics.NewControlEffort(),
		metrics.NewTopSpeed(),
		metrics.NewDistance(),
	}
}
