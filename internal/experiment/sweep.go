package experiment

import (
	"fmt"

	"github.com/san-kum/cellsolver/internal/sim"
)

// SweepPoint is the outcome of one stimulus amplitude.
type SweepPoint struct {
	Amplitude float64
	Resets    int
	// Rate is resets per unit of the variable of integration over the
	// whole interval.
	Rate float64
}

// Sweep runs the experiment once per amplitude, concurrently, keeping the
// rest of the stimulus unchanged. The model must be externally driven.
func (e *Experiment) Sweep(amplitudes []float64) ([]SweepPoint, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if !e.model.Kind.Driven() {
		return nil, fmt.Errorf("sweep: %s takes no external input", e.cfg.Model)
	}
	base, err := e.registry.Stimulus(e.cfg.Model, e.cfg.Stimulus)
	if err != nil {
		return nil, err
	}

	params := e.cfg.Parameters()
	jobs := make([]sim.Job, len(amplitudes))
	for i, a := range amplitudes {
		s := *base
		s.Amplitude = a
		opts := e.Options()
		opts.Provider = pulse(&s)
		opts.Timing = sim.Timing{}
		jobs[i] = sim.Job{Name: fmt.Sprintf("amplitude %g", a), Params: params, Options: opts}
	}

	results, err := sim.RunMany(e.model, jobs)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	span := params.End() - params.Start()
	points := make([]SweepPoint, len(results))
	for i, res := range results {
		points[i] = SweepPoint{
			Amplitude: amplitudes[i],
			Resets:    res.Summary.Resets,
			Rate:      float64(res.Summary.Resets) / span,
		}
	}
	return points, nil
}

// Threshold returns the first point, in sweep order, whose run fired at
// least one reset.
func Threshold(points []SweepPoint) (SweepPoint, bool) {
	for _, p := range points {
		if p.Resets > 0 {
			return p, true
		}
	}
	return SweepPoint{}, false
}
