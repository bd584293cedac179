package config

import (
	"slices"

	"github.com/samber/lo"
)

// Presets mirror the track missions of a formula-student event.
var Presets = map[string]*Config{
	"acceleration": {
		Model: "bicycle", Integrator: "euler", Driver: "constant", YawControl: "none",
		Dt: 0.01, Duration: 10.0, Recovery: "halt", MaxFailures: DefaultMaxFailures,
		StopDistance: 75,
		Metrics:      []string{"finish_time", "top_speed", "distance"},
		DriverParams: DriverConfig{DC: 1.0, MaxSteer: DefaultMaxSteer},
	},
	"skidpad": {
		Model: "bicycle", Integrator: "euler", Driver: "skidpad", YawControl: "none",
		Dt: 0.01, Duration: 30.0, Recovery: "halt", MaxFailures: DefaultMaxFailures,
		Metrics: []string{"peak_lateral_accel", "stability", "top_speed"},
		DriverParams: DriverConfig{
			Kp: DefaultKp, Ki: DefaultKi, TargetSpeed: 8.0, Radius: 9.125,
			MaxSteer: DefaultMaxSteer,
		},
	},
	"slalom": {
		Model: "bicycle", Integrator: "euler", Driver: "sine", YawControl: "none",
		Dt: 0.01, Duration: 20.0, Recovery: "halt", MaxFailures: DefaultMaxFailures,
		Metrics:      []string{"peak_lateral_accel", "stability", "control_effort"},
		InitState:    InitStateConfig{VX: 8},
		DriverParams: DriverConfig{Amplitude: 0.1, Frequency: 0.5, DC: 0.1, MaxSteer: DefaultMaxSteer},
	},
	"coastdown": {
		Model: "bicycle", Integrator: "euler", Driver: "constant", YawControl: "none",
		Dt: 0.01, Duration: 30.0, Recovery: "halt", MaxFailures: DefaultMaxFailures,
		StopSpeed:    0.5,
		Metrics:      []string{"distance", "kinetic_energy", "kinematic_share"},
		InitState:    InitStateConfig{VX: 20},
		DriverParams: DriverConfig{MaxSteer: DefaultMaxSteer},
	},
	"parking": {
		Model: "bicycle", Integrator: "euler", Driver: "cruise", YawControl: "none",
		Dt: 0.01, Duration: 15.0, Recovery: "hold", MaxFailures: DefaultMaxFailures,
		Metrics: []string{"kinematic_share", "distance"},
		DriverParams: DriverConfig{
			Delta: DefaultMaxSteer, Kp: DefaultKp, Ki: DefaultKi, TargetSpeed: 1.0,
			MaxSteer: DefaultMaxSteer,
		},
	},
	"lanechange": {
		Model: "bicycle", Integrator: "rk4", Driver: "lanekeep", YawControl: "torque_vectoring",
		Dt: 0.01, Duration: 8.0, Recovery: "halt", MaxFailures: DefaultMaxFailures,
		Metrics:   []string{"peak_lateral_accel", "stability", "control_effort"},
		InitState: InitStateConfig{VX: 15},
		DriverParams: DriverConfig{
			Kp: DefaultKp, Ki: DefaultKi, TargetSpeed: 15, Offset: 3.5,
			Gains: [4]float64{0.05, 0.6, 0.02, 0.05}, MaxSteer: 0.15,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := lo.Keys(Presets)
	slices.Sort(names)
	return names
}
