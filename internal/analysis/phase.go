package analysis

import (
	"math"
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds one channel plotted against another.
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []Point
}

// NewPhasePortrait pairs the samples of xs and ys, dropping non-finite
// pairs.
func NewPhasePortrait(xLabel string, xs []float64, yLabel string, ys []float64) *PhasePortrait2D {
	n := min(len(xs), len(ys))
	portrait := &PhasePortrait2D{XLabel: xLabel, YLabel: yLabel, Points: make([]Point, 0, n)}
	for i := 0; i < n; i++ {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			portrait.Points = append(portrait.Points, Point{xs[i], ys[i]})
		}
	}
	return portrait
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type axis struct{ lo, span float64 }

// newAxis pads [lo, hi] by a tenth of its span on both sides.
func newAxis(lo, hi float64) axis {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return axis{lo: lo - span*0.1, span: span * 1.2}
}

func (a axis) cell(v float64, cells int) int {
	return int((v - a.lo) / a.span * float64(cells-1))
}

// PhasePortraitToASCII renders the portrait on a width x height grid, with
// the zero axes drawn where they are visible.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	first := portrait.Points[0]
	minX, maxX, minY, maxY := first.X, first.X, first.Y, first.Y
	for _, p := range portrait.Points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	ax, ay := newAxis(minX, maxX), newAxis(minY, maxY)

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	set := func(row, col int, r rune, overwrite bool) {
		if row < 0 || row >= height || col < 0 || col >= width {
			return
		}
		if overwrite || canvas[row][col] == ' ' {
			canvas[row][col] = r
		}
	}

	for _, p := range portrait.Points {
		set(height-1-ay.cell(p.Y, height), ax.cell(p.X, width), '•', true)
	}
	if ax.lo <= 0 && ax.lo+ax.span >= 0 {
		col := ax.cell(0, width)
		for row := 0; row < height; row++ {
			set(row, col, '│', false)
		}
	}
	if ay.lo <= 0 && ay.lo+ay.span >= 0 {
		row := height - 1 - ay.cell(0, height)
		for col := 0; col < width; col++ {
			set(row, col, '─', false)
		}
	}

	var sb strings.Builder
	if portrait.YLabel != "" {
		sb.WriteString(portrait.YLabel)
		sb.WriteRune('\n')
	}
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	if portrait.XLabel != "" {
		sb.WriteString(strings.Repeat(" ", max(0, width-len(portrait.XLabel))))
		sb.WriteString(portrait.XLabel)
		sb.WriteRune('\n')
	}
	return sb.String()
}
