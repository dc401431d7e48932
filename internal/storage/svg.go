package storage

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/cellsolver/internal/analysis"
	"github.com/san-kum/cellsolver/internal/sim"
)

var svgPalette = []string{"#ff5f5f", "#5fff87", "#ffd75f", "#5fafff", "#d75fff", "#5fffff"}

// ExportSVG draws the given channels against x as an SVG line chart. With
// no ids the channels sharing the extents of the first channel are drawn.
// Non-finite samples break the line.
func ExportSVG(w io.Writer, series *sim.Series, ids []string, width, height int) error {
	if series.Len() < 2 || len(series.Channels) == 0 {
		return fmt.Errorf("svg: %s has too few samples to draw", series.Title)
	}

	var indices []int
	if len(ids) == 0 {
		indices = analysis.GroupByExtent(series.Y)[0]
	}
	for _, id := range ids {
		i := channelIndex(series, id)
		if i < 0 {
			return fmt.Errorf("svg: no channel %q in %s", id, series.Title)
		}
		indices = append(indices, i)
	}

	minX, maxX := series.X[0], series.X[series.Len()-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, i := range indices {
		for _, v := range series.Y[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY, maxY = math.Min(minY, v), math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 0) {
		minY, maxY = 0, 1
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	rangeY *= 1.1

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<title>%s</title>
`, width, height, width, height, series.Title)

	for j, idx := range indices {
		color := svgPalette[j%len(svgPalette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" data-channel="%s" d="`,
			color, series.Channels[idx].ID())

		pen := false
		for k, v := range series.Y[idx] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = false
				continue
			}
			x := (series.X[k] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if pen {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " M%.1f,%.1f", x, y)
				pen = true
			}
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(j+1), color, series.Channels[idx].ID())
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func channelIndex(series *sim.Series, id string) int {
	for i, c := range series.Channels {
		if c.ID() == id {
			return i
		}
	}
	return -1
}
