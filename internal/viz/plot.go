package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cellsolver/internal/analysis"
	"github.com/san-kum/cellsolver/internal/sim"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Blue,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

type PlotOptions struct {
	Width  int
	Height int
	// Grouped draws channels sharing extents on one chart; otherwise every
	// channel gets its own.
	Grouped bool
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 12, Grouped: true}
}

// PlotSeries renders the channels of series as asciigraph charts.
func PlotSeries(series *sim.Series, opts PlotOptions) string {
	if series.Len() == 0 || len(series.Channels) == 0 {
		return Subtle.Render("no data") + "\n"
	}

	var groups [][]int
	if opts.Grouped {
		groups = analysis.GroupByExtent(series.Y)
	} else {
		for i := range series.Channels {
			groups = append(groups, []int{i})
		}
	}

	var sb strings.Builder
	for gi, group := range groups {
		data := make([][]float64, len(group))
		colors := make([]asciigraph.AnsiColor, len(group))
		legend := make([]string, len(group))
		for j, idx := range group {
			data[j] = series.Y[idx]
			colors[j] = seriesColors[j%len(seriesColors)]
			c := series.Channels[idx]
			legend[j] = fmt.Sprintf("%s%s%s", colors[j], c.ID(), asciigraph.Default)
			if c.Units != "" {
				legend[j] += Subtle.Render(" (" + c.Units + ")")
			}
		}

		caption := ChartCaption(series, gi == len(groups)-1)
		sb.WriteString(asciigraph.PlotMany(data,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.SeriesColors(colors...),
			asciigraph.Caption(caption),
		))
		sb.WriteString("\n  ")
		sb.WriteString(strings.Join(legend, "  "))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// ChartCaption labels the x axis on the bottom chart only.
func ChartCaption(series *sim.Series, bottom bool) string {
	if !bottom {
		return ""
	}
	x := series.XInfo.Name
	if series.XInfo.Units != "" {
		x += " (" + series.XInfo.Units + ")"
	}
	return fmt.Sprintf("%s  [%g, %g]", x, series.X[0], series.X[series.Len()-1])
}
