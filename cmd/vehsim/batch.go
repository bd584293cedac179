package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/vehsim/internal/analysis"
	"github.com/san-kum/vehsim/internal/automation"
	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/optim"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

func basePreset(name string) (*config.Config, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	return cfg, nil
}

func newSweepCmd() *cobra.Command {
	var (
		base, param, metric string
		from, to            float64
		steps               int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one vehicle parameter over a preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := basePreset(base)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			runner := automation.NewRunner(experiment.NewRegistry(), logger)
			results, err := runner.RunSweep(ctx, &automation.ParameterSweep{
				Base: cfg, ParamName: param, ParamMin: from, ParamMax: to, NumSteps: steps,
			})
			if err != nil && len(results) == 0 {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tSTEPS\tFINAL SPEED\t%s\tERROR\n", strings.ToUpper(param), strings.ToUpper(metric))
			for _, r := range results {
				errText := "-"
				if r.Err != nil {
					errText = r.Err.Error()
				}
				fmt.Fprintf(w, "%.4g\t%d\t%.3f\t%.4f\t%s\n", r.ParamValue, r.Steps, r.Final.Speed(), r.Metrics[metric], errText)
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&base, "preset", "acceleration", "base preset")
	cmd.Flags().StringVar(&param, "param", "m", "vehicle parameter to sweep")
	cmd.Flags().StringVar(&metric, "metric", "top_speed", "metric to report")
	cmd.Flags().Float64Var(&from, "min", 150, "first value")
	cmd.Flags().Float64Var(&to, "max", 250, "last value")
	cmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	return cmd
}

// parseSpread reads name=fraction pairs.
func parseSpread(pairs map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for name, raw := range pairs {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("spread %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func newMonteCarloCmd() *cobra.Command {
	var (
		base     string
		trials   int
		workers  int
		perturb  float64
		mcSeed   int64
		spread   map[string]string
		reported []string
	)
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run a preset with randomized initial state and parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := basePreset(base)
			if err != nil {
				return err
			}
			ps, err := parseSpread(spread)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			runner := automation.NewRunner(experiment.NewRegistry(), logger)
			results, err := runner.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
				Base: cfg, Perturbation: perturb, ParamSpread: ps,
				NumTrials: trials, Workers: workers, Seed: mcSeed,
			})
			if err != nil && results == nil {
				return err
			}

			stable, unstable := automation.MonteCarloStats(results)
			fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("  trial %d: %v\n", r.TrialID, r.Err)
				}
			}
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METRIC\tMEAN\tMIN\tMAX\tN")
			for _, name := range reported {
				s := automation.SummarizeMetric(results, name)
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%d\n", name, s.Mean, s.Min, s.Max, s.N)
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&base, "preset", "slalom", "base preset")
	cmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = one per CPU)")
	cmd.Flags().Float64Var(&perturb, "perturb", 0.5, "initial velocity perturbation half-width")
	cmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().StringToStringVar(&spread, "spread", map[string]string{"m": "0.1", "D": "0.1"}, "relative parameter spread, name=fraction")
	cmd.Flags().StringSliceVar(&reported, "metrics", []string{"stability", "peak_lateral_accel"}, "metrics to summarize")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			fmt.Println(titleStyle.Render(sc.Name))
			if sc.Description != "" {
				fmt.Println(sc.Description)
			}
			runner := automation.NewRunner(experiment.NewRegistry(), logger)
			results, err := runner.RunScenario(ctx, sc)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tSTEPS\tFAILURES\tDISTANCE\tFINAL SPEED")
			for _, r := range results {
				if r.Result == nil {
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.2f\n", r.Name, r.Result.StepsTaken, r.Result.Failures, r.Result.Distance(), r.Result.Final().Speed())
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			return err
		},
	}
}

// applyTuned sets a driver gain or, failing that, a vehicle parameter.
func applyTuned(cfg *config.Config, p *vehicle.Params, name string, v float64) error {
	switch name {
	case "kp":
		cfg.DriverParams.Kp = v
	case "ki":
		cfg.DriverParams.Ki = v
	case "kd":
		cfg.DriverParams.Kd = v
	case "target_speed":
		cfg.DriverParams.TargetSpeed = v
	default:
		return p.SetParam(name, v)
	}
	return nil
}

func newTuneCmd() *cobra.Command {
	var (
		base, metric string
		names        []string
		lows, highs  []float64
		points       int
		maximize     bool
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search driver gains or vehicle parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(lows) != len(names) || len(highs) != len(names) {
				return fmt.Errorf("need one --min and --max per --param")
			}
			if _, err := basePreset(base); err != nil {
				return err
			}
			reg := experiment.NewRegistry()
			ranges := make([][]float64, len(names))
			for i := range names {
				ranges[i] = optim.Linspace(lows[i], highs[i], points)
			}
			g := optim.NewGridSearch(names, ranges)
			g.Maximize = maximize

			build := func(params map[string]float64) (*experiment.Experiment, error) {
				cfg := config.GetPreset(base)
				p, err := cfg.GetVehicle()
				if err != nil {
					return nil, err
				}
				for name, v := range params {
					if err := applyTuned(cfg, &p, name, v); err != nil {
						return nil, err
					}
				}
				if err := p.Validate(); err != nil {
					return nil, err
				}
				return experiment.NewWithParams(reg, cfg, p, sim.WithLogger(logger))
			}

			ctx, cancel := signalContext()
			defer cancel()

			fmt.Printf("searching %d points on %s\n", g.Size(), base)
			best, val, err := g.Search(ctx, build, metric)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(best))
			for k := range best {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %s = %.5g\n", k, best[k])
			}
			fmt.Printf("%s: %.6f\n", metric, val)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "preset", "skidpad", "base preset")
	cmd.Flags().StringVar(&metric, "metric", "stability", "metric to optimize")
	cmd.Flags().StringSliceVar(&names, "param", []string{"kp"}, "parameters to tune")
	cmd.Flags().Float64SliceVar(&lows, "min", []float64{0.1}, "lower bounds")
	cmd.Flags().Float64SliceVar(&highs, "max", []float64{2}, "upper bounds")
	cmd.Flags().IntVar(&points, "points", 5, "grid points per parameter")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var (
		base     string
		minSpeed float64
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "yaw-rate spectrum and sideslip phase plane of a preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := basePreset(base)
			if err != nil {
				return err
			}
			exp, err := experiment.New(experiment.NewRegistry(), cfg, sim.WithLogger(logger))
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			result, err := exp.Run(ctx)
			if err != nil {
				return err
			}

			yawRate := analysis.Trace(result.States, func(s vehicle.State) float64 { return s.R })
			spec, err := analysis.PowerSpectrum(yawRate, cfg.Dt)
			if err != nil {
				return err
			}

			// Show the band up to 5 Hz; driver inputs live well below it.
			upTo := len(spec.Power)
			for i, f := range spec.Freqs {
				if f > 5 {
					upTo = i
					break
				}
			}
			fmt.Println(asciigraph.Plot(spec.Power[:upTo],
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption("yaw rate power spectrum, 0-5 Hz"),
			))
			fmt.Println()

			peak, err := analysis.DominantFrequency(yawRate, cfg.Dt)
			if err != nil {
				return err
			}
			fmt.Printf("dominant yaw-rate frequency: %.3f Hz\n", peak)

			steer := make([]float64, len(result.Inputs))
			for i, in := range result.Inputs {
				steer[i] = in.Delta
			}
			// Input i produced state i+1.
			if len(steer) == len(yawRate)-1 {
				if g, err := analysis.Gain(steer, yawRate[1:], cfg.Dt, peak); err == nil && !math.IsNaN(g) {
					fmt.Printf("yaw-rate gain at %.3f Hz: %.3f 1/s\n", peak, g)
				}
			}

			pp := analysis.NewPhasePlane(result.States, minSpeed)
			fmt.Printf("\n%s vs %s\n", pp.YLabel, pp.XLabel)
			fmt.Println(pp.ASCII(60, 20))
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "preset", "slalom", "preset to analyze")
	cmd.Flags().Float64Var(&minSpeed, "min-speed", 1, "skip samples below this speed in the phase plane")
	return cmd
}
