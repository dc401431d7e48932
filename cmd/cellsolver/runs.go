package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/cellsolver/internal/analysis"
	"github.com/san-kum/cellsolver/internal/sim"
	"github.com/san-kum/cellsolver/internal/storage"
	"github.com/san-kum/cellsolver/internal/tui"
	"github.com/san-kum/cellsolver/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tINTERVAL\tSTEP\tSOLVER\tSAMPLES\tRESETS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%g\t%s\t%d\t%d\n",
			run.ID,
			run.Title,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Parameters.Integration.Interval,
			run.Parameters.Integration.StepSize,
			run.Solver,
			run.Summary.Samples,
			run.Summary.Resets,
		)
	}

	return w.Flush()
}

func loadSeries(runID string) (*sim.Series, error) {
	series, err := storage.New(dataDir).LoadSeries(runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("run %s has no data", runID)
	}
	return series, nil
}

func channel(series *sim.Series, id string) ([]float64, error) {
	values, ok := series.Channel(id)
	if !ok {
		return nil, fmt.Errorf("no channel %q in %s", id, series.Title)
	}
	return values, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	series, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Metric("run", args[0]))
	fmt.Println(viz.Metric("model", series.Title))
	fmt.Println(viz.Metric("samples", fmt.Sprint(series.Len())))
	fmt.Println()

	fmt.Print(viz.PlotSeries(series, viz.PlotOptions{
		Width:   plotWidth,
		Height:  plotHeight,
		Grouped: !noGroup,
	}))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	return tui.Run(series)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	series, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL\tUNITS\tMIN\tMAX\tMEAN\tFINAL\tTREND")
		for i, s := range analysis.Describe(series) {
			fmt.Fprintf(w, "%s\t%s\t%.6g\t%.6g\t%.6g\t%.6g\t%s\n",
				s.Channel.ID(), s.Channel.Units, s.Min, s.Max, s.Mean, s.Final,
				viz.Sparkline(series.Y[i], 16))
		}
		return w.Flush()
	}

	id := args[1]
	values, err := channel(series, id)
	if err != nil {
		return err
	}

	var stats analysis.ChannelStats
	for _, s := range analysis.Describe(series) {
		if s.Channel.ID() == id {
			stats = s
		}
	}
	level := stats.Mean
	if cmd.Flags().Changed("threshold") {
		level = threshold
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s: %s", series.Title, id)))
	fmt.Println(viz.Metric("min", fmt.Sprintf("%.6g", stats.Min)))
	fmt.Println(viz.Metric("max", fmt.Sprintf("%.6g", stats.Max)))
	fmt.Println(viz.Metric("mean", fmt.Sprintf("%.6g", stats.Mean)))
	fmt.Println(viz.Metric("extent", analysis.Extent(values)))
	fmt.Println(viz.Separator(40))

	if negate {
		values, level = analysis.Negate(values), -level
	}
	crossings := analysis.Crossings(series.X, values, level)
	fmt.Println(viz.Metric("threshold", fmt.Sprintf("%.6g", level)))
	fmt.Println(viz.Metric("crossings", fmt.Sprint(len(crossings))))
	if len(crossings) > 1 {
		fmt.Println(viz.Metric("crossing rate", fmt.Sprintf("%.6g per %s", analysis.Rate(crossings), series.XInfo.Units)))
	}

	fmt.Println(viz.Separator(40))
	freq, err := analysis.DominantFrequency(series.X, values)
	if err != nil {
		fmt.Println(viz.Metric("dominant frequency", viz.Subtle.Render(err.Error())))
		return nil
	}
	fmt.Println(viz.Metric("dominant frequency", fmt.Sprintf("%.6g per %s", freq, series.XInfo.Units)))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	xs, err := channel(series, args[1])
	if err != nil {
		return err
	}
	ys, err := channel(series, args[2])
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(args[1], xs, args[2], ys)
	fmt.Println(viz.Title.Render(fmt.Sprintf("phase portrait: %s", series.Title)))
	fmt.Println(analysis.PhasePortraitToASCII(portrait, phaseWidth, phaseHeight))
	return nil
}

func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportWith(runID string, export func(io.Writer, *sim.Series) error) error {
	series, err := storage.New(dataDir).LoadSeries(runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := export(w, series); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "exported %d samples to %s\n", series.Len(), outFile)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return exportWith(args[0], storage.ExportCSV)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return exportWith(args[0], storage.ExportJSON)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	return exportWith(args[0], func(w io.Writer, series *sim.Series) error {
		return storage.ExportSVG(w, series, svgChannels, svgWidth, svgHeight)
	})
}
