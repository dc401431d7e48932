package models

import (
	"math"

	"github.com/san-kum/cellsolver/internal/sim"
)

// State layout of the squid axon model.
const (
	hhM = iota
	hhH
	hhN
	hhV
)

// Variable layout of the squid axon model.
const (
	hhGL = iota
	hhCm
	hhER
	hhGK
	hhGNa
	hhIStim
	hhEL
	hhIL
	hhENa
	hhINa
	hhAlphaM
	hhBetaM
	hhAlphaH
	hhBetaH
	hhEK
	hhIK
	hhAlphaN
	hhBetaN

	hhVariableCount
)

func hhInfo(name string) sim.Info {
	const (
		membrane  = "membrane"
		sodium    = "sodium_channel"
		potassium = "potassium_channel"
		leakage   = "leakage_current"
		mGate     = "sodium_channel_m_gate"
		hGate     = "sodium_channel_h_gate"
		nGate     = "potassium_channel_n_gate"
	)
	return sim.Info{
		Name: name,
		VOI:  sim.ChannelInfo{Name: "time", Units: "millisecond", Component: membrane},
		States: []sim.ChannelInfo{
			hhM: {Name: "m", Units: "dimensionless", Component: mGate},
			hhH: {Name: "h", Units: "dimensionless", Component: hGate},
			hhN: {Name: "n", Units: "dimensionless", Component: nGate},
			hhV: {Name: "V", Units: "millivolt", Component: membrane},
		},
		Variables: []sim.ChannelInfo{
			hhGL:     {Name: "g_L", Units: "milliS_per_cm2", Component: leakage},
			hhCm:     {Name: "Cm", Units: "microF_per_cm2", Component: membrane},
			hhER:     {Name: "E_R", Units: "millivolt", Component: membrane},
			hhGK:     {Name: "g_K", Units: "milliS_per_cm2", Component: potassium},
			hhGNa:    {Name: "g_Na", Units: "milliS_per_cm2", Component: sodium},
			hhIStim:  {Name: "i_Stim", Units: "microA_per_cm2", Component: membrane},
			hhEL:     {Name: "E_L", Units: "millivolt", Component: leakage},
			hhIL:     {Name: "i_L", Units: "microA_per_cm2", Component: leakage},
			hhENa:    {Name: "E_Na", Units: "millivolt", Component: sodium},
			hhINa:    {Name: "i_Na", Units: "microA_per_cm2", Component: sodium},
			hhAlphaM: {Name: "alpha_m", Units: "per_millisecond", Component: mGate},
			hhBetaM:  {Name: "beta_m", Units: "per_millisecond", Component: mGate},
			hhAlphaH: {Name: "alpha_h", Units: "per_millisecond", Component: hGate},
			hhBetaH:  {Name: "beta_h", Units: "per_millisecond", Component: hGate},
			hhEK:     {Name: "E_K", Units: "millivolt", Component: potassium},
			hhIK:     {Name: "i_K", Units: "microA_per_cm2", Component: potassium},
			hhAlphaN: {Name: "alpha_n", Units: "per_millisecond", Component: nGate},
			hhBetaN:  {Name: "beta_n", Units: "per_millisecond", Component: nGate},
		},
	}
}

// hhCell holds the equations shared by the self-stimulating and the
// externally driven squid axon models. Neither variant keeps state
// between calls.
type hhCell struct{}

func (hhCell) CreateStateVector() []float64    { return sim.NewVector(4) }
func (hhCell) CreateVariableVector() []float64 { return sim.NewVector(hhVariableCount) }
func (hhCell) CreateRateVector() []float64     { return sim.NewVector(4) }

func (hhCell) initialize(states, variables []float64) {
	states[hhM] = 0.05
	states[hhH] = 0.6
	states[hhN] = 0.325
	states[hhV] = 0.0
	variables[hhGL] = 0.3
	variables[hhCm] = 1.0
	variables[hhER] = 0.0
	variables[hhGK] = 36.0
	variables[hhGNa] = 120.0
}

func (hhCell) ComputeComputedConstants(variables []float64) {
	variables[hhEL] = variables[hhER] - 10.613
	variables[hhENa] = variables[hhER] - 115.0
	variables[hhEK] = variables[hhER] + 12.0
}

func (hhCell) gates(states, variables []float64) {
	v := states[hhV]
	variables[hhAlphaM] = 0.1 * (v + 25.0) / (math.Exp((v+25.0)/10.0) - 1.0)
	variables[hhBetaM] = 4.0 * math.Exp(v/18.0)
	variables[hhAlphaH] = 0.07 * math.Exp(v/20.0)
	variables[hhBetaH] = 1.0 / (math.Exp((v+30.0)/10.0) + 1.0)
	variables[hhAlphaN] = 0.01 * (v + 10.0) / (math.Exp((v+10.0)/10.0) - 1.0)
	variables[hhBetaN] = 0.125 * math.Exp(v/80.0)
}

func (hhCell) currents(states, variables []float64) {
	v := states[hhV]
	variables[hhIL] = variables[hhGL] * (v - variables[hhEL])
	variables[hhIK] = variables[hhGK] * math.Pow(states[hhN], 4) * (v - variables[hhEK])
	variables[hhINa] = variables[hhGNa] * math.Pow(states[hhM], 3) * states[hhH] * (v - variables[hhENa])
}

// rates expects i_Stim to be current.
func (c hhCell) rates(states, rates, variables []float64) {
	c.gates(states, variables)
	rates[hhM] = variables[hhAlphaM]*(1.0-states[hhM]) - variables[hhBetaM]*states[hhM]
	rates[hhH] = variables[hhAlphaH]*(1.0-states[hhH]) - variables[hhBetaH]*states[hhH]
	rates[hhN] = variables[hhAlphaN]*(1.0-states[hhN]) - variables[hhBetaN]*states[hhN]

	c.currents(states, variables)
	rates[hhV] = -(-variables[hhIStim] + variables[hhINa] + variables[hhIK] + variables[hhIL]) / variables[hhCm]
}

func (c hhCell) variables(states, variables []float64) {
	c.gates(states, variables)
	c.currents(states, variables)
}

// HodgkinHuxley is the 1952 squid axon model with its built-in stimulus:
// a -20 microA/cm2 pulse between 10 and 10.5 ms.
type HodgkinHuxley struct {
	hhCell
}

func NewHodgkinHuxley() *HodgkinHuxley {
	return &HodgkinHuxley{}
}

func HodgkinHuxleyDescriptor() sim.Descriptor {
	return sim.Descriptor{
		Info: hhInfo("hodgkin_huxley_squid_axon_model_1952"),
		Kind: sim.KindBase,
		New:  func() any { return NewHodgkinHuxley() },
	}
}

func (m *HodgkinHuxley) Initialize(states, variables []float64) {
	m.initialize(states, variables)
}

func (m *HodgkinHuxley) ComputeRates(t float64, states, rates, variables []float64) {
	variables[hhIStim] = builtinStimulus(t)
	m.rates(states, rates, variables)
}

func (m *HodgkinHuxley) ComputeVariables(t float64, states, rates, variables []float64) {
	variables[hhIStim] = builtinStimulus(t)
	m.variables(states, variables)
}

func builtinStimulus(t float64) float64 {
	if t >= 10.0 && t <= 10.5 {
		return -20.0
	}
	return 0.0
}

// HHExternal is the squid axon model with i_Stim supplied by a provider.
type HHExternal struct {
	hhCell
}

func NewHHExternal() *HHExternal {
	return &HHExternal{}
}

func HHExternalDescriptor() sim.Descriptor {
	return sim.Descriptor{
		Info: hhInfo("hh_external"),
		Kind: sim.KindExternallyDriven,
		New:  func() any { return NewHHExternal() },
	}
}

func (m *HHExternal) ExternalVariables() []int {
	return []int{hhIStim}
}

func (m *HHExternal) Initialize(states, variables []float64, p sim.Provider) {
	m.initialize(states, variables)
	variables[hhIStim] = p.Init(hhIStim)
}

func (m *HHExternal) ComputeRates(t float64, states, rates, variables []float64, p sim.Provider) {
	variables[hhIStim] = p.Update(t, states, rates, variables, hhIStim)
	m.rates(states, rates, variables)
}

func (m *HHExternal) ComputeVariables(t float64, states, rates, variables []float64, p sim.Provider) {
	variables[hhIStim] = p.Update(t, states, rates, variables, hhIStim)
	m.variables(states, variables)
}
