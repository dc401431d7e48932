package sim

import (
	"errors"
	"math"
)

func testInfo(name string, states, variables int) Info {
	info := Info{Name: name, VOI: ChannelInfo{Name: "t", Component: "env", Units: "s"}}
	for i := 0; i < states; i++ {
		info.States = append(info.States, ChannelInfo{Name: string(rune('a' + i)), Component: "state", Units: "1"})
	}
	for i := 0; i < variables; i++ {
		info.Variables = append(info.Variables, ChannelInfo{Name: string(rune('a' + i)), Component: "var", Units: "1"})
	}
	return info
}

// ramp has x' = rate from x0 and one variable holding 2x.
type ramp struct {
	x0   float64
	rate float64
}

func (m *ramp) CreateStateVector() []float64           { return NewVector(1) }
func (m *ramp) CreateVariableVector() []float64        { return NewVector(1) }
func (m *ramp) CreateRateVector() []float64            { return NewVector(1) }
func (m *ramp) ComputeComputedConstants(v []float64)   {}
func (m *ramp) Initialize(states, variables []float64) { states[0] = m.x0 }

func (m *ramp) ComputeRates(t float64, states, rates, variables []float64) {
	rates[0] = m.rate
}

func (m *ramp) ComputeVariables(t float64, states, rates, variables []float64) {
	variables[0] = 2 * states[0]
}

func rampDescriptor() Descriptor {
	return Descriptor{
		Info: testInfo("ramp", 1, 1),
		Kind: KindBase,
		New:  func() any { return &ramp{x0: 0, rate: 1} },
	}
}

// saw is a ramp from 1 that drops back to 1 whenever it reaches 2.
type saw struct {
	ramp
	applyErr error
}

func (m *saw) Resets() []ResetSpec {
	return []ResetSpec{{
		Test: func(t float64, states, variables []float64) float64 { return states[0] - 2 },
		Apply: func(t float64, states, variables []float64) error {
			if m.applyErr != nil {
				return m.applyErr
			}
			states[0] = 1
			return nil
		},
	}}
}

func sawDescriptor() Descriptor {
	return Descriptor{
		Info: testInfo("saw", 1, 1),
		Kind: KindResetCapable,
		New:  func() any { return &saw{ramp: ramp{x0: 1, rate: 1}} },
	}
}

// follower integrates an external input: x' = u, with u in variable 0.
type follower struct {
	slot  int
	stray bool
}

func (m *follower) CreateStateVector() []float64         { return NewVector(1) }
func (m *follower) CreateVariableVector() []float64      { return NewVector(2) }
func (m *follower) CreateRateVector() []float64          { return NewVector(1) }
func (m *follower) ComputeComputedConstants(v []float64) {}
func (m *follower) ExternalVariables() []int             { return []int{m.slot} }

func (m *follower) Initialize(states, variables []float64, p Provider) {
	states[0] = 0
	variables[0] = p.Init(0)
	variables[1] = 0
}

func (m *follower) ComputeRates(t float64, states, rates, variables []float64, p Provider) {
	variables[0] = p.Update(t, states, rates, variables, 0)
	if m.stray {
		variables[1] = p.Update(t, states, rates, variables, 1)
	}
	rates[0] = variables[0]
}

func (m *follower) ComputeVariables(t float64, states, rates, variables []float64, p Provider) {
	variables[0] = p.Update(t, states, rates, variables, 0)
}

func followerDescriptor() Descriptor {
	return Descriptor{
		Info: testInfo("follower", 1, 2),
		Kind: KindExternallyDriven,
		New:  func() any { return &follower{} },
	}
}

// spiker is a follower with a reset that returns x to 0 at 1.
type spiker struct {
	follower
}

func (m *spiker) Resets() []ResetSpec {
	return []ResetSpec{{
		Test:  func(t float64, states, variables []float64) float64 { return states[0] - 1 },
		Apply: func(t float64, states, variables []float64) error { states[0] = 0; return nil },
	}}
}

func spikerDescriptor() Descriptor {
	return Descriptor{
		Info: testInfo("spiker", 1, 2),
		Kind: KindBoth,
		New:  func() any { return &spiker{} },
	}
}

// poisoned produces NaN rates after t = 0.5.
type poisoned struct {
	ramp
}

func (m *poisoned) ComputeRates(t float64, states, rates, variables []float64) {
	rates[0] = 1
	if t > 0.5 {
		rates[0] = math.NaN()
	}
}

func poisonedDescriptor() Descriptor {
	return Descriptor{
		Info: testInfo("poisoned", 1, 1),
		Kind: KindBase,
		New:  func() any { return &poisoned{} },
	}
}

func constantInput(u float64) ProviderFuncs {
	return ProviderFuncs{
		InitFunc:   func(int) float64 { return u },
		UpdateFunc: func(float64, []float64, []float64, []float64, int) float64 { return u },
	}
}

var errBoom = errors.New("boom")

func testParams(t1, step, resultStep float64) Parameters {
	return Parameters{
		Integration: IntegrationParams{StepSize: step, Interval: []float64{0, t1}},
		Result:      ResultParams{StepSize: resultStep},
	}
}
