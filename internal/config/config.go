package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

const (
	DefaultDt          = 0.01
	DefaultDuration    = 10.0
	DefaultMaxFailures = 10
	DefaultKp          = 0.5
	DefaultKi          = 0.1
	DefaultKd          = 0.0
	DefaultMaxSteer    = 0.35
)

type Config struct {
	Model        string          `yaml:"model"`
	Integrator   string          `yaml:"integrator"`
	Driver       string          `yaml:"driver"`
	YawControl   string          `yaml:"yaw_control"`
	Vehicle      string          `yaml:"vehicle,omitempty"`
	Dt           float64         `yaml:"dt"`
	Duration     float64         `yaml:"duration"`
	Seed         int64           `yaml:"seed"`
	Recovery     string          `yaml:"recovery"`
	MaxFailures  int             `yaml:"max_failures"`
	StopDistance float64         `yaml:"stop_distance,omitempty"`
	StopSpeed    float64         `yaml:"stop_speed,omitempty"`
	Metrics      []string        `yaml:"metrics,omitempty"`
	InitState    InitStateConfig `yaml:"init_state"`
	DriverParams DriverConfig    `yaml:"driver_params"`
}

type InitStateConfig struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	Yaw float64 `yaml:"yaw"`
	VX  float64 `yaml:"vx"`
	VY  float64 `yaml:"vy"`
	R   float64 `yaml:"r"`
}

// DriverConfig carries the parameters of every driver kind; each driver
// reads the fields it needs.
type DriverConfig struct {
	Delta       float64           `yaml:"delta"`
	DC          float64           `yaml:"dc"`
	Kp          float64           `yaml:"kp"`
	Ki          float64           `yaml:"ki"`
	Kd          float64           `yaml:"kd"`
	TargetSpeed float64           `yaml:"target_speed"`
	Radius      float64           `yaml:"radius,omitempty"`
	Amplitude   float64           `yaml:"amplitude,omitempty"`
	Frequency   float64           `yaml:"frequency,omitempty"`
	Offset      float64           `yaml:"offset,omitempty"`
	Gains       [4]float64        `yaml:"gains,flow"`
	MaxSteer    float64           `yaml:"max_steer"`
	Script      []control.Segment `yaml:"script,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "bicycle",
		Integrator:  "euler",
		Driver:      "constant",
		YawControl:  "none",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Recovery:    sim.RecoveryHalt.String(),
		MaxFailures: DefaultMaxFailures,
		DriverParams: DriverConfig{
			Kp:       DefaultKp,
			Ki:       DefaultKi,
			Kd:       DefaultKd,
			MaxSteer: DefaultMaxSteer,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Metrics = append([]string(nil), c.Metrics...)
	out.DriverParams.Script = append([]control.Segment(nil), c.DriverParams.Script...)
	return &out
}

func (c *Config) GetInitState() vehicle.State {
	return vehicle.State{
		X:   c.InitState.X,
		Y:   c.InitState.Y,
		Yaw: c.InitState.Yaw,
		VX:  c.InitState.VX,
		VY:  c.InitState.VY,
		R:   c.InitState.R,
	}
}

// SimConfig converts the run settings for the host loop.
func (c *Config) SimConfig() (sim.Config, error) {
	rec, err := sim.ParseRecovery(c.Recovery)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		Recovery:    rec,
		MaxFailures: c.MaxFailures,
	}, nil
}

// GetVehicle loads the vehicle file named by the config, or the defaults.
func (c *Config) GetVehicle() (vehicle.Params, error) {
	if c.Vehicle == "" {
		return DefaultVehicle(), nil
	}
	return LoadVehicle(c.Vehicle)
}
