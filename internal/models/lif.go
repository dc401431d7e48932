package models

import "github.com/san-kum/cellsolver/internal/sim"

const (
	lifV = iota
	lifSpikes
)

const (
	lifTau = iota
	lifEL
	lifR
	lifThreshold
	lifVReset
	lifIExt
	lifILeak

	lifVariableCount
)

// LIF is a leaky integrate-and-fire neuron driven by an external current.
// Crossing the threshold fires two resets at once: the spike counter is
// incremented and the membrane is returned to V_reset.
type LIF struct {
	Tau       float64
	EL        float64
	R         float64
	Threshold float64
	VReset    float64
}

func NewLIF() *LIF {
	return &LIF{
		Tau:       10.0,
		EL:        -65.0,
		R:         10.0,
		Threshold: -50.0,
		VReset:    -70.0,
	}
}

func LIFDescriptor() sim.Descriptor {
	const membrane = "membrane"
	return sim.Descriptor{
		Info: sim.Info{
			Name: "lif",
			VOI:  sim.ChannelInfo{Name: "time", Units: "millisecond", Component: membrane},
			States: []sim.ChannelInfo{
				lifV:      {Name: "V", Units: "millivolt", Component: membrane},
				lifSpikes: {Name: "spikes", Units: "dimensionless", Component: "spike_counter"},
			},
			Variables: []sim.ChannelInfo{
				lifTau:       {Name: "tau_m", Units: "millisecond", Component: membrane},
				lifEL:        {Name: "E_L", Units: "millivolt", Component: membrane},
				lifR:         {Name: "R_m", Units: "megaohm", Component: membrane},
				lifThreshold: {Name: "V_th", Units: "millivolt", Component: membrane},
				lifVReset:    {Name: "V_reset", Units: "millivolt", Component: membrane},
				lifIExt:      {Name: "I_ext", Units: "nanoA", Component: membrane},
				lifILeak:     {Name: "i_leak", Units: "nanoA", Component: membrane},
			},
		},
		Kind: sim.KindBoth,
		New:  func() any { return NewLIF() },
	}
}

func (m *LIF) CreateStateVector() []float64    { return sim.NewVector(2) }
func (m *LIF) CreateVariableVector() []float64 { return sim.NewVector(lifVariableCount) }
func (m *LIF) CreateRateVector() []float64     { return sim.NewVector(2) }

func (m *LIF) ExternalVariables() []int {
	return []int{lifIExt}
}

func (m *LIF) Initialize(states, variables []float64, p sim.Provider) {
	variables[lifTau] = m.Tau
	variables[lifEL] = m.EL
	variables[lifR] = m.R
	variables[lifThreshold] = m.Threshold
	variables[lifVReset] = m.VReset
	variables[lifIExt] = p.Init(lifIExt)
	states[lifV] = m.EL
	states[lifSpikes] = 0
}

func (m *LIF) ComputeComputedConstants(variables []float64) {}

func (m *LIF) ComputeRates(t float64, states, rates, variables []float64, p sim.Provider) {
	variables[lifIExt] = p.Update(t, states, rates, variables, lifIExt)
	rates[lifV] = (-(states[lifV] - variables[lifEL]) + variables[lifR]*variables[lifIExt]) / variables[lifTau]
	rates[lifSpikes] = 0
}

func (m *LIF) ComputeVariables(t float64, states, rates, variables []float64, p sim.Provider) {
	variables[lifIExt] = p.Update(t, states, rates, variables, lifIExt)
	variables[lifILeak] = (states[lifV] - variables[lifEL]) / variables[lifR]
}

func (m *LIF) Resets() []sim.ResetSpec {
	crossed := func(t float64, states, variables []float64) float64 {
		return states[lifV] - variables[lifThreshold]
	}
	return []sim.ResetSpec{
		{
			Order: 1,
			Test:  crossed,
			Apply: func(t float64, states, variables []float64) error {
				states[lifSpikes]++
				return nil
			},
		},
		{
			Order: 0,
			Test:  crossed,
			Apply: func(t float64, states, variables []float64) error {
				states[lifV] = variables[lifVReset]
				return nil
			},
		},
	}
}
