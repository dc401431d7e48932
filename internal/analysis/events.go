package analysis

// Crossings returns the interpolated times at which y rises through
// threshold.
func Crossings(x, y []float64, threshold float64) []float64 {
	times := make([]float64, 0)
	for i := 1; i < len(y) && i < len(x); i++ {
		prev, curr := y[i-1], y[i]
		if !(prev < threshold && curr >= threshold) {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		times = append(times, x[i-1]+frac*(x[i]-x[i-1]))
	}
	return times
}

// Rate returns the mean number of crossings per unit of x, zero when
// there are fewer than two.
func Rate(crossings []float64) float64 {
	n := len(crossings)
	if n < 2 {
		return 0
	}
	return float64(n-1) / (crossings[n-1] - crossings[0])
}

// Negate returns -v.
func Negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}
