package metrics

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

var (
	_ sim.Metric = (*Stability)(nil)
	_ sim.Metric = (*ControlEffort)(nil)
	_ sim.Metric = (*KineticEnergy)(nil)
	_ sim.Metric = (*PeakLateralAccel)(nil)
	_ sim.Metric = (*TopSpeed)(nil)
	_ sim.Metric = (*Distance)(nil)
	_ sim.Metric = (*FinishTime)(nil)
	_ sim.Metric = (*KinematicShare)(nil)
)

var builders = map[string]func(p vehicle.Params) sim.Metric{
	"stability":          func(vehicle.Params) sim.Metric { return NewStability(0.15) },
	"control_effort":     func(vehicle.Params) sim.Metric { return NewControlEffort() },
	"kinetic_energy":     func(p vehicle.Params) sim.Metric { return NewKineticEnergy(p) },
	"peak_lateral_accel": func(vehicle.Params) sim.Metric { return NewPeakLateralAccel() },
	"top_speed":          func(vehicle.Params) sim.Metric { return NewTopSpeed() },
	"distance":           func(vehicle.Params) sim.Metric { return NewDistance() },
	"finish_time":        func(vehicle.Params) sim.Metric { return NewFinishTime(75) },
	"kinematic_share":    func(vehicle.Params) sim.Metric { return NewKinematicShare() },
}

// New builds the named metric for a vehicle.
func New(name string, p vehicle.Params) (sim.Metric, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return b(p), nil
}

// Names lists the metrics New accepts.
func Names() []string {
	names := lo.Keys(builders)
	slices.Sort(names)
	return names
}
