package automation

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// ParameterSweep runs the base configuration once per value of one
// vehicle parameter, spaced evenly over [ParamMin, ParamMax].
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds one point of a sweep. Err is set when the run was
// rejected; the sweep carries on with the next value.
type SweepResult struct {
	ParamValue float64
	Final      vehicle.State
	Metrics    map[string]float64
	Steps      int
	Err        error
}

// Values returns the swept parameter values.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	return lo.Times(s.NumSteps, func(i int) float64 {
		return s.ParamMin + float64(i)*step
	})
}

func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("sweep has no base configuration")
	}
	if !lo.Contains(vehicle.ParamNames(), sweep.ParamName) {
		return nil, fmt.Errorf("unknown vehicle parameter: %s", sweep.ParamName)
	}

	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	for i, val := range values {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		p, err := vehicleWith(sweep.Base, map[string]float64{sweep.ParamName: val})
		if err != nil {
			results = append(results, SweepResult{ParamValue: val, Err: err})
			continue
		}

		exp, err := experiment.NewWithParams(r.registry, sweep.Base, p, sim.WithLogger(r.log))
		if err != nil {
			return results, err
		}

		res, err := exp.Run(ctx)
		sr := SweepResult{ParamValue: val, Err: err}
		if res != nil {
			sr.Final = res.Final()
			sr.Metrics = res.Metrics
			sr.Steps = res.StepsTaken
		}
		results = append(results, sr)

		r.log.Debug("sweep point", "n", i+1, "of", len(values), sweep.ParamName, val, "err", err)
	}

	return results, nil
}
