package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooShort  = errors.New("analysis: series too short")
	ErrUneven    = errors.New("analysis: samples are not evenly spaced")
	ErrNoSpectra = errors.New("analysis: signal has no non-constant component")
)

// PowerSpectrum returns the magnitude of the one-sided spectrum of data
// after removing its mean and applying a Hann window.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)

	windowed := make([]float64, n)
	for i, v := range data {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * window
	}
	spectrum := fft.FFTReal(windowed)

	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency of the strongest non-DC bin of
// y sampled at times x, in cycles per unit of x.
func DominantFrequency(x, y []float64) (float64, error) {
	if len(x) < 4 || len(y) != len(x) {
		return 0, ErrTooShort
	}
	dt, err := spacing(x)
	if err != nil {
		return 0, err
	}

	ps := PowerSpectrum(y)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] < 1e-12 {
		return 0, ErrNoSpectra
	}
	return float64(best) / (float64(len(y)) * dt), nil
}

// spacing returns the sample interval of x. A final sample closer than
// one interval, left by a short last step, is tolerated.
func spacing(x []float64) (float64, error) {
	dt := x[1] - x[0]
	if !(dt > 0) {
		return 0, ErrUneven
	}
	for i := 2; i < len(x)-1; i++ {
		if math.Abs((x[i]-x[i-1])-dt) > 1e-6*dt {
			return 0, ErrUneven
		}
	}
	return dt, nil
}
