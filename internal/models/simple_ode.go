package models

import "github.com/san-kum/cellsolver/internal/sim"

// SimpleODE is a single state A growing at unit rate, reset to 1 whenever
// it reaches 2.
type SimpleODE struct{}

func NewSimpleODE() *SimpleODE {
	return &SimpleODE{}
}

func SimpleODEDescriptor() sim.Descriptor {
	const component = "single_independent_ode"
	return sim.Descriptor{
		Info: sim.Info{
			Name: "simple_ode",
			VOI:  sim.ChannelInfo{Name: "time", Units: "second", Component: component},
			States: []sim.ChannelInfo{
				{Name: "A", Units: "meter", Component: component},
			},
		},
		Kind: sim.KindResetCapable,
		New:  func() any { return NewSimpleODE() },
	}
}

func (m *SimpleODE) CreateStateVector() []float64    { return sim.NewVector(1) }
func (m *SimpleODE) CreateVariableVector() []float64 { return sim.NewVector(0) }
func (m *SimpleODE) CreateRateVector() []float64     { return sim.NewVector(1) }

func (m *SimpleODE) Initialize(states, variables []float64) {
	states[0] = 1.0
}

func (m *SimpleODE) ComputeComputedConstants(variables []float64) {}

func (m *SimpleODE) ComputeRates(t float64, states, rates, variables []float64) {
	rates[0] = 1.0
}

func (m *SimpleODE) ComputeVariables(t float64, states, rates, variables []float64) {}

func (m *SimpleODE) Resets() []sim.ResetSpec {
	return []sim.ResetSpec{
		{
			Order: 0,
			Test: func(t float64, states, variables []float64) float64 {
				return states[0] - 2
			},
			Apply: func(t float64, states, variables []float64) error {
				states[0] = 1
				return nil
			},
		},
	}
}
