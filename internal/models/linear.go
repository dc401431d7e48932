package models

import "github.com/san-kum/cellsolver/internal/sim"

// Linear has one state x with constant rate and a computed variable
// holding twice the state.
type Linear struct {
	X0   float64
	Rate float64
}

func NewLinear() *Linear {
	return &Linear{X0: 0.0, Rate: 1.0}
}

func LinearDescriptor() sim.Descriptor {
	const component = "linear"
	return sim.Descriptor{
		Info: sim.Info{
			Name:      "linear",
			VOI:       sim.ChannelInfo{Name: "time", Units: "second", Component: component},
			States:    []sim.ChannelInfo{{Name: "x", Units: "dimensionless", Component: component}},
			Variables: []sim.ChannelInfo{{Name: "two_x", Units: "dimensionless", Component: component}},
		},
		Kind: sim.KindBase,
		New:  func() any { return NewLinear() },
	}
}

func (m *Linear) CreateStateVector() []float64    { return sim.NewVector(1) }
func (m *Linear) CreateVariableVector() []float64 { return sim.NewVector(1) }
func (m *Linear) CreateRateVector() []float64     { return sim.NewVector(1) }

func (m *Linear) Initialize(states, variables []float64) {
	states[0] = m.X0
}

func (m *Linear) ComputeComputedConstants(variables []float64) {}

func (m *Linear) ComputeRates(t float64, states, rates, variables []float64) {
	rates[0] = m.Rate
}

func (m *Linear) ComputeVariables(t float64, states, rates, variables []float64) {
	variables[0] = 2 * states[0]
}
