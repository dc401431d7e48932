package models

import "math"

// PulseStimulus provides a square current pulse of Amplitude starting at
// Start and lasting Duration. A positive Period repeats the pulse; a
// non-positive Duration holds the current from Start onwards.
type PulseStimulus struct {
	Amplitude float64
	Start     float64
	Duration  float64
	Period    float64
}

// DefaultPulseStimulus reproduces the built-in stimulus of the squid axon
// model.
func DefaultPulseStimulus() *PulseStimulus {
	return &PulseStimulus{Amplitude: -20.0, Start: 10.0, Duration: 0.5}
}

// DefaultInputCurrent is a sustained 2 nA step at 5 ms, enough to drive
// the integrate-and-fire neuron above threshold.
func DefaultInputCurrent() *PulseStimulus {
	return &PulseStimulus{Amplitude: 2.0, Start: 5.0}
}

func (p *PulseStimulus) Init(index int) float64 {
	return p.At(0)
}

func (p *PulseStimulus) Update(t float64, states, rates, variables []float64, index int) float64 {
	return p.At(t)
}

// At returns the stimulus value at t.
func (p *PulseStimulus) At(t float64) float64 {
	if t < p.Start {
		return 0
	}
	if p.Duration <= 0 {
		return p.Amplitude
	}
	offset := t - p.Start
	if p.Period > 0 {
		offset = math.Mod(offset, p.Period)
	}
	if offset <= p.Duration {
		return p.Amplitude
	}
	return 0
}
