package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cellsolver/internal/config"
	"github.com/san-kum/cellsolver/internal/experiment"
	"github.com/san-kum/cellsolver/internal/sim"
	"github.com/san-kum/cellsolver/internal/storage"
	"github.com/san-kum/cellsolver/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	theme       string
	solver      string
	interval    []float64
	stepSize    float64
	resultStep  float64
	configFile  string
	preset      string
	timeit      int
	includes    []string
	excludes    []string
	plot        bool
	noSave      bool
	plotWidth   int
	plotHeight  int
	noGroup     bool
	phaseWidth  int
	phaseHeight int
	threshold   float64
	negate      bool
	outFile     string
	svgChannels []string
	svgWidth    int
	svgHeight   int
	amplitudes  []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cellsolver",
		Short:         "cellular model simulation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			viz.SetTheme(theme)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cellsolver", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeNeon.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimulationFlags(runCmd)
	runCmd.Flags().IntVar(&timeit, "timeit", 0, "repeat the run N more times and report the average time")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the result")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the result")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [solver1] [solver2] ...",
		Short: "compare solvers on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSolvers,
	}
	addSimulationFlags(compareCmd)

	solversCmd := &cobra.Command{
		Use:   "solvers",
		Short: "list known solvers",
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range sim.KnownSolvers() {
				fmt.Println(s)
			}
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list registered models",
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "chart width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "chart height")
	plotCmd.Flags().BoolVar(&noGroup, "no-group", false, "one chart per channel")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse run channels interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id] [channel]",
		Short: "statistics, threshold crossings and dominant frequency",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", 0, "crossing threshold (default: channel mean)")
	analyzeCmd.Flags().BoolVar(&negate, "negate", false, "count crossings of the negated channel, for downward spikes")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id] [x_channel] [y_channel]",
		Short: "phase space plot of two channels",
		Args:  cobra.ExactArgs(3),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&phaseWidth, "width", 60, "plot width")
	phaseCmd.Flags().IntVar(&phaseHeight, "height", 20, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run channels as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringSliceVar(&svgChannels, "channels", nil, "channels to draw (default: the first extent group)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "count resets over a range of stimulus amplitudes",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepStimulus,
	}
	addSimulationFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&amplitudes, "amplitudes", []float64{0, 1, 2, 3, 4}, "stimulus amplitudes")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run and store every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	rootCmd.AddCommand(runCmd, compareCmd, sweepCmd, batchCmd, solversCmd, modelsCmd, presetsCmd, listCmd, plotCmd, viewCmd, analyzeCmd, phaseCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.Failure.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&solver, "solver", config.DefaultSolver, "solver ("+strings.Join(sim.KnownSolvers(), ", ")+")")
	cmd.Flags().Float64SliceVar(&interval, "interval", []float64{config.DefaultStart, config.DefaultEnd}, "integration interval t0,t1")
	cmd.Flags().Float64Var(&stepSize, "step-size", config.DefaultStepSize, "integration step size")
	cmd.Flags().Float64Var(&resultStep, "result-step", config.DefaultResultStepSize, "result sampling step")
	cmd.Flags().StringVar(&configFile, "config", "", "parameter file (yaml or json)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringSliceVar(&includes, "include", nil, "report only these component.name channels")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "do not report these component.name channels")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildConfig layers preset, parameter file and explicitly set flags, in
// that order. model may be empty when the file names one.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if model != "" {
		cfg.Model = model
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if model != "" {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver = solver
	}
	if flags.Changed("interval") {
		if len(interval) != 2 {
			return nil, fmt.Errorf("--interval takes exactly two values, got %d", len(interval))
		}
		cfg.SetInterval(interval[0], interval[1])
	}
	if flags.Changed("step-size") {
		cfg.Integration.StepSize = stepSize
	}
	if flags.Changed("result-step") {
		cfg.Result.StepSize = resultStep
	}
	if flags.Changed("include") {
		cfg.Result.Config.ParameterIncludes = includes
	}
	if flags.Changed("exclude") {
		cfg.Result.Config.ParameterExcludes = excludes
	}
	if flags.Changed("timeit") {
		cfg.Timeit = timeit
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	var model string
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := buildConfig(cmd, model)
	if err != nil {
		return err
	}

	logger := newLogger()
	exp := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("running %s with %s", cfg.Model, cfg.Solver)))
	res, runErr := exp.Run()
	if runErr != nil && !errors.Is(runErr, sim.ErrNumericalFailure) {
		return fmt.Errorf("run %s: %w", cfg.Model, runErr)
	}
	if runErr != nil {
		fmt.Println(viz.Warning.Render(fmt.Sprintf("numerical failure, keeping %d samples: %v", res.Series.Len(), runErr)))
	}

	printSummary(res)

	if plot {
		fmt.Println()
		fmt.Print(viz.PlotSeries(res.Series, viz.DefaultPlotOptions()))
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Solver, cfg.Parameters(), res)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Println(viz.Metric("run id", runID))
	}

	return runErr
}

func printSummary(res *sim.Result) {
	s := res.Summary
	fmt.Println(viz.Metric("strategy", s.Strategy))
	fmt.Println(viz.Metric("steps", fmt.Sprint(s.Steps)))
	if s.Solver != nil {
		fmt.Println(viz.Metric("rejected", fmt.Sprint(s.Solver.Rejected)))
		fmt.Println(viz.Metric("evaluations", fmt.Sprint(s.Solver.Evaluations)))
	}
	fmt.Println(viz.Metric("resets", fmt.Sprint(s.Resets)))
	if s.ExternalUpdates > 0 {
		fmt.Println(viz.Metric("external updates", fmt.Sprint(s.ExternalUpdates)))
	}
	fmt.Println(viz.Metric("samples", fmt.Sprint(res.Series.Len())))
	fmt.Println(viz.Metric("channels", fmt.Sprint(len(res.Series.Channels))))
	if res.Timing != nil {
		fmt.Println(viz.Metric("average time", fmt.Sprintf("%v over %d runs", res.Timing.Average, res.Timing.Repeats)))
	}
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	solvers := args[1:]

	exp := experiment.New(cfg, experiment.NewRegistry(), newLogger())
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("comparing %s on %s", strings.Join(solvers, ", "), cfg.Model)))
	results, err := exp.Compare(solvers)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	ref := results[0].Series
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tSTRATEGY\tSTEPS\tRESETS\tSAMPLES\tMAX DEV")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			solvers[i],
			res.Summary.Strategy,
			res.Summary.Steps,
			res.Summary.Resets,
			res.Series.Len(),
			deviation(ref, res.Series),
		)
	}
	return w.Flush()
}

// deviation is the largest absolute difference between two series over
// all channels, or "-" when their sample grids differ.
func deviation(a, b *sim.Series) string {
	if a.Len() != b.Len() || len(a.Y) != len(b.Y) || !floats.EqualApprox(a.X, b.X, 1e-9) {
		return "-"
	}
	worst := 0.0
	for i := range a.Y {
		worst = math.Max(worst, floats.Distance(a.Y[i], b.Y[i], math.Inf(1)))
	}
	return fmt.Sprintf("%.3g", worst)
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := experiment.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("scenario %s: %d steps", scenario.Name, len(scenario.Steps))))
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}

	results, runErr := experiment.RunScenario(scenario, experiment.NewRegistry(), newLogger())
	for i, r := range results {
		runID, err := st.Save(r.Config.Solver, r.Config.Parameters(), r.Result)
		if err != nil {
			return fmt.Errorf("save step %d: %w", i+1, err)
		}
		fmt.Printf("%s %s\n", viz.Success.Render(fmt.Sprintf("step %d", i+1)), runID)
	}
	return runErr
}

func sweepStimulus(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry(), newLogger())
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("sweeping %s over %d amplitudes", cfg.Model, len(amplitudes))))
	points, err := exp.Sweep(amplitudes)
	if err != nil {
		return err
	}

	rates := make([]float64, len(points))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AMPLITUDE\tRESETS\tRATE")
	for i, p := range points {
		rates[i] = p.Rate
		fmt.Fprintf(w, "%g\t%d\t%.4g\n", p.Amplitude, p.Resets, p.Rate)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Metric("rate", viz.Sparkline(rates, len(rates))))
	if th, ok := experiment.Threshold(points); ok {
		fmt.Println(viz.Metric("threshold", fmt.Sprintf("%g", th.Amplitude)))
	} else {
		fmt.Println(viz.Metric("threshold", viz.Subtle.Render("no firing in range")))
	}
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tKIND\tSTATES\tVARIABLES\tPRESETS")
	for _, name := range registry.ListModels() {
		d, _ := registry.Describe(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			name,
			d.Kind,
			len(d.Info.States),
			len(d.Info.Variables),
			strings.Join(config.ListPresets(name), ","),
		)
	}
	return w.Flush()
}
