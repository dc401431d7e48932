package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/cellsolver/internal/sim"
)

type ChannelStats struct {
	Channel sim.ChannelInfo
	Min     float64
	Max     float64
	Mean    float64
	Final   float64
}

// Describe summarizes every channel of series. Channels containing
// non-finite values report NaN statistics.
func Describe(series *sim.Series) []ChannelStats {
	out := make([]ChannelStats, len(series.Channels))
	for i, c := range series.Channels {
		y := series.Y[i]
		s := ChannelStats{Channel: c, Min: math.NaN(), Max: math.NaN(), Mean: math.NaN(), Final: math.NaN()}
		if len(y) > 0 {
			s.Final = y[len(y)-1]
			if sim.IsFinite(y) {
				s.Min = floats.Min(y)
				s.Max = floats.Max(y)
				s.Mean = stat.Mean(y, nil)
			}
		}
		out[i] = s
	}
	return out
}

// Extent labels a channel by the decades of its maximum and minimum.
// Zero has no decade and is labelled "zero".
func Extent(data []float64) string {
	if len(data) == 0 {
		return "empty"
	}
	return decade(floats.Max(data)) + " " + decade(floats.Min(data))
}

func decade(v float64) string {
	v = math.Abs(v)
	if v == 0 {
		return "zero"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return fmt.Sprint(math.Floor(math.Log10(v)))
}

// GroupByExtent partitions channel indices by Extent, groups ordered by
// first appearance.
func GroupByExtent(y [][]float64) [][]int {
	var groups [][]int
	index := make(map[string]int)
	for i, col := range y {
		e := Extent(col)
		g, ok := index[e]
		if !ok {
			g = len(groups)
			index[e] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
