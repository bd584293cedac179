package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
	"github.com/san-kum/vehsim/internal/viz"
)

var (
	logLevel    string
	preset      string
	configFile  string
	vehicleFile string
	model       string
	integrator  string
	driver      string
	yawControl  string
	recovery    string
	dt          float64
	duration    float64
	vx          float64
	delta       float64
	dc          float64
	kp          float64
	ki          float64
	kd          float64
	target      float64
	plot        bool
	manual      bool
	outFile     string

	logger *log.Logger
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func main() {
	rootCmd := &cobra.Command{
		Use:   "vehsim",
		Short: "single-track vehicle dynamics simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Level:           lvl,
				ReportTimestamp: true,
				Prefix:          "vehsim",
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.Interactive(experiment.NewRegistry(), manual)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&manual, "manual", false, "drive with the keyboard")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and print its metrics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot speed and yaw rate")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the live dashboard",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().BoolVar(&manual, "manual", false, "drive with the keyboard")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset runs",
		RunE:  listPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "print the default vehicle parameter file",
		RunE:  dumpParams,
	}
	paramsCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark every model and integrator",
		RunE:  benchModels,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, paramsCmd, benchCmd,
		newSweepCmd(), newMonteCarloCmd(), newScenarioCmd(), newTuneCmd(), newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&vehicleFile, "vehicle", "", "vehicle parameter file (yaml)")
	f.StringVar(&model, "model", "bicycle", "vehicle model")
	f.StringVar(&integrator, "integrator", "euler", "integrator")
	f.StringVar(&driver, "driver", "constant", "driver")
	f.StringVar(&yawControl, "yaw-control", "none", "yaw moment controller")
	f.StringVar(&recovery, "recovery", "halt", "on rejected step: halt, hold or reset")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Float64Var(&vx, "vx", 0, "initial longitudinal speed")
	f.Float64Var(&delta, "delta", 0, "steering angle (constant driver)")
	f.Float64Var(&dc, "dc", 0, "throttle (constant driver)")
	f.Float64Var(&kp, "kp", config.DefaultKp, "speed pid kp")
	f.Float64Var(&ki, "ki", config.DefaultKi, "speed pid ki")
	f.Float64Var(&kd, "kd", config.DefaultKd, "speed pid kd")
	f.Float64Var(&target, "target", 0, "target speed")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if vehicleFile != "" {
		cfg.Vehicle = vehicleFile
	}

	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Model = model
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("driver") {
		cfg.Driver = driver
	}
	if f.Changed("yaw-control") {
		cfg.YawControl = yawControl
	}
	if f.Changed("recovery") {
		cfg.Recovery = recovery
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("vx") {
		cfg.InitState.VX = vx
	}
	if f.Changed("delta") {
		cfg.DriverParams.Delta = delta
	}
	if f.Changed("dc") {
		cfg.DriverParams.DC = dc
	}
	if f.Changed("kp") {
		cfg.DriverParams.Kp = kp
	}
	if f.Changed("ki") {
		cfg.DriverParams.Ki = ki
	}
	if f.Changed("kd") {
		cfg.DriverParams.Kd = kd
	}
	if f.Changed("target") {
		cfg.DriverParams.TargetSpeed = target
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(experiment.NewRegistry(), cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s / %s / %s...\n", cfg.Model, cfg.Integrator, cfg.Driver)
	start := time.Now()
	result, err := exp.Run(ctx)
	elapsed := time.Since(start)
	if result == nil {
		return err
	}

	printResult(result, elapsed)
	if plot {
		plotResult(result)
	}
	return err
}

func printResult(result *sim.Result, elapsed time.Duration) {
	final := result.Final()
	fmt.Println(titleStyle.Render("run " + result.ID))
	fmt.Printf("completed in %v\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	fmt.Fprintf(w, "failures\t%d\n", result.Failures)
	fmt.Fprintf(w, "stopped early\t%v\n", result.Stopped)
	fmt.Fprintf(w, "final position\t%.2f, %.2f m\n", final.X, final.Y)
	fmt.Fprintf(w, "final speed\t%.2f m/s\n", final.Speed())
	fmt.Fprintf(w, "distance\t%.2f m\n", result.Distance())
	w.Flush()

	if len(result.Metrics) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
}

func plotResult(result *sim.Result) {
	if len(result.States) < 2 {
		return
	}
	speed := make([]float64, len(result.States))
	yawRate := make([]float64, len(result.States))
	for i, s := range result.States {
		speed[i] = s.Speed()
		yawRate[i] = s.R
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(speed, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("speed [m/s]")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(yawRate, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("yaw rate [rad/s]")))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = cfg.Driver
	}
	d, err := viz.DashboardFor(experiment.NewRegistry(), name, cfg, manual)
	if err != nil {
		return err
	}
	return viz.Run(d)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODEL\tINTEG\tDRIVER\tYAW\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1fs\n", name, p.Model, p.Integrator, p.Driver, p.YawControl, p.Duration)
	}
	return w.Flush()
}

func dumpParams(cmd *cobra.Command, args []string) error {
	p := config.DefaultVehicle()
	if outFile != "" {
		if err := config.SaveVehicle(outFile, p); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func benchModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	p := config.DefaultVehicle()
	const steps = 100000

	fmt.Printf("benchmarking %d steps per model\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tINTEG\tTIME\tSTEPS/SEC")

	for _, name := range reg.ListModels() {
		for _, integ := range reg.ListIntegrators() {
			m, err := reg.GetModel(name, integ, "none", p)
			if err != nil {
				return err
			}
			s := vehicle.State{VX: 10}
			in := vehicle.Input{Delta: 0.05, DC: 0.2}

			start := time.Now()
			for i := 0; i < steps; i++ {
				next, err := m.Advance(s, in, 0.001)
				if err != nil {
					return fmt.Errorf("%s/%s: step %d: %w", name, integ, i, err)
				}
				s = next
			}
			elapsed := time.Since(start)
			fmt.Fprintf(w, "%s\t%s\t%v\t%.0f\n", name, integ, elapsed, float64(steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
