package automation

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// MonteCarloConfig perturbs the base run. Perturbation is the absolute
// half-width applied to v_x, v_y and r of the initial state; ParamSpread
// maps vehicle parameter names to relative half-widths.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	ParamSpread  map[string]float64
	NumTrials    int
	Workers      int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID   int
	InitState vehicle.State
	Params    map[string]float64
	Final     vehicle.State
	Metrics   map[string]float64
	Failures  int
	Stable    bool  // no rejected step
	Err       error // build error, or why the run ended early
}

// RunMonteCarlo runs the trials as an ensemble. Trial i draws from its own
// source seeded with Seed+i, so results do not depend on scheduling. A zero
// Seed falls back to the base configuration's seed, then to the clock.
func (r *Runner) RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("monte carlo has no base configuration")
	}
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("number of trials must be positive, got %d", cfg.NumTrials)
	}
	simCfg, err := cfg.Base.SimConfig()
	if err != nil {
		return nil, err
	}
	base, err := cfg.Base.GetVehicle()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Base.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results := make([]MonteCarloResult, cfg.NumTrials)
	for i := range results {
		results[i].TrialID = i
	}
	factory := func(i int) (*sim.Simulator, vehicle.State, error) {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		jitter := func(w float64) float64 { return (rng.Float64() - 0.5) * 2 * w }

		x0 := cfg.Base.GetInitState()
		x0.VX += jitter(cfg.Perturbation)
		x0.VY += jitter(cfg.Perturbation)
		x0.R += jitter(cfg.Perturbation)

		p := base
		drawn := make(map[string]float64, len(cfg.ParamSpread))
		nominal := p.GetParams()
		names := lo.Keys(cfg.ParamSpread)
		slices.Sort(names)
		for _, name := range names {
			v := nominal[name] * (1 + jitter(cfg.ParamSpread[name]))
			if err := p.SetParam(name, v); err != nil {
				return nil, x0, err
			}
			drawn[name] = v
		}

		results[i].InitState = x0
		results[i].Params = drawn

		exp, err := experiment.NewWithParams(r.registry, cfg.Base, p, sim.WithLogger(r.log))
		if err != nil {
			return nil, x0, err
		}
		return exp.Simulator(), x0, nil
	}

	ens := sim.NewEnsemble(factory, cfg.NumTrials)
	if cfg.Workers > 0 {
		ens.SetWorkers(cfg.Workers)
	}

	for i, m := range ens.RunMembers(ctx, simCfg) {
		results[i].Err = m.Err
		res := m.Result
		if res == nil {
			continue
		}
		results[i].Final = res.Final()
		results[i].Metrics = res.Metrics
		results[i].Failures = res.Failures
		results[i].Stable = res.Failures == 0
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	stable, unstable := MonteCarloStats(results)
	r.log.Info("monte carlo complete", "trials", cfg.NumTrials, "stable", stable, "unstable", unstable)
	return results, nil
}

// MonteCarloStats counts trials that completed without a rejected step.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	stableCount = lo.CountBy(results, func(r MonteCarloResult) bool { return r.Stable })
	return stableCount, len(results) - stableCount
}

// MetricSummary is the spread of one metric over the trials that reported it.
type MetricSummary struct {
	Mean, Min, Max float64
	N              int
}

func SummarizeMetric(results []MonteCarloResult, name string) MetricSummary {
	vals := lo.FilterMap(results, func(r MonteCarloResult, _ int) (float64, bool) {
		v, ok := r.Metrics[name]
		return v, ok
	})
	if len(vals) == 0 {
		return MetricSummary{}
	}
	return MetricSummary{
		Mean: lo.Mean(vals),
		Min:  lo.Min(vals),
		Max:  lo.Max(vals),
		N:    len(vals),
	}
}
