package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// Runner executes scenarios, sweeps and Monte Carlo batches against a
// registry.
type Runner struct {
	registry *experiment.Registry
	log      *log.Logger
}

func NewRunner(registry *experiment.Registry, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{registry: registry, log: logger}
}

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the default run) and overrides
// what it names. Params override vehicle parameters by name.
type ScenarioStep struct {
	Name         string                  `yaml:"name"`
	Preset       string                  `yaml:"preset"`
	Model        string                  `yaml:"model"`
	Integrator   string                  `yaml:"integrator"`
	Driver       string                  `yaml:"driver"`
	YawControl   string                  `yaml:"yaw_control"`
	Duration     float64                 `yaml:"duration"`
	Dt           float64                 `yaml:"dt"`
	InitState    *config.InitStateConfig `yaml:"init_state"`
	DriverParams *config.DriverConfig    `yaml:"driver_params"`
	Params       map[string]float64      `yaml:"params"`
}

// StepResult pairs a scenario step with its run.
type StepResult struct {
	Name   string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the run configuration of a step.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Driver != "" {
		cfg.Driver = s.Driver
	}
	if s.YawControl != "" {
		cfg.YawControl = s.YawControl
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.InitState != nil {
		cfg.InitState = *s.InitState
	}
	if s.DriverParams != nil {
		cfg.DriverParams = *s.DriverParams
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		r.log.Info("running step", "scenario", scenario.Name, "step", name, "n", i+1, "of", len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		p, err := vehicleWith(cfg, step.Params)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.NewWithParams(r.registry, cfg, p, sim.WithLogger(r.log))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, Result: result})
	}

	return results, nil
}

// vehicleWith loads the config's vehicle and applies named overrides.
func vehicleWith(cfg *config.Config, overrides map[string]float64) (vehicle.Params, error) {
	p, err := cfg.GetVehicle()
	if err != nil {
		return vehicle.Params{}, err
	}
	for name, v := range overrides {
		if err := p.SetParam(name, v); err != nil {
			return vehicle.Params{}, err
		}
	}
	if err := p.Validate(); err != nil {
		return vehicle.Params{}, err
	}
	return p, nil
}
