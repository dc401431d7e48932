package sim

import "sort"

// ResetSpec describes one discrete event. Test returns a scalar whose sign
// tells which side of the threshold the system is on; Apply overwrites
// the state entries the reset owns.
type ResetSpec struct {
	Order int
	Test  func(t float64, states, variables []float64) float64
	Apply func(t float64, states, variables []float64) error
}

type resetPhase uint8

const (
	phaseIdle resetPhase = iota
	phaseArmed
	phaseFiring
)

func (p resetPhase) String() string {
	switch p {
	case phaseArmed:
		return "armed"
	case phaseFiring:
		return "firing"
	default:
		return "idle"
	}
}

// ResetMachine detects sign changes of reset test values and applies the
// activated resets.
//
// A reset i activates when test[i]*reference[i] <= 0, so an exact zero
// touch counts as a crossing. Activated resets are applied in ascending
// Order; resets sharing an Order keep their declaration order.
//
// RearmAfterFiring: once every activated reset has been applied, the test
// values are evaluated once on the post-reset state at the firing time and
// become the new reference. When nothing activates, the reference is left
// as it was.
type ResetMachine struct {
	specs     []ResetSpec
	byOrder   []int
	test      []float64
	reference []float64
	activated []bool
	phase     resetPhase
	fired     int
}

// NewResetMachine allocates the test vector, reference vector and
// activation mask for specs.
func NewResetMachine(specs []ResetSpec) *ResetMachine {
	m := &ResetMachine{
		specs:     specs,
		byOrder:   make([]int, len(specs)),
		test:      NewVector(len(specs)),
		reference: NewVector(len(specs)),
		activated: make([]bool, len(specs)),
	}
	for i := range m.byOrder {
		m.byOrder[i] = i
	}
	sort.SliceStable(m.byOrder, func(a, b int) bool {
		return specs[m.byOrder[a]].Order < specs[m.byOrder[b]].Order
	})
	return m
}

// Evaluate fills the machine's test vector at (t, states, variables) and
// returns it. The slice is owned by the machine.
func (m *ResetMachine) Evaluate(t float64, states, variables []float64) []float64 {
	for i, r := range m.specs {
		m.test[i] = r.Test(t, states, variables)
	}
	return m.test
}

// Arm establishes the reference vector from the test values at t.
func (m *ResetMachine) Arm(t float64, states, variables []float64) {
	m.Evaluate(t, states, variables)
	copy(m.reference, m.test)
	m.phase = phaseArmed
}

// Check evaluates the test values at t, applies every activated reset and
// re-arms. It reports whether anything fired. An Apply error is returned
// as a *ResetError and leaves the machine in the firing phase.
func (m *ResetMachine) Check(t float64, states, variables []float64) (bool, error) {
	if m.phase != phaseArmed {
		m.Arm(t, states, variables)
		return false, nil
	}

	m.Evaluate(t, states, variables)
	fire := false
	for i := range m.test {
		m.activated[i] = m.test[i]*m.reference[i] <= 0
		fire = fire || m.activated[i]
	}
	if !fire {
		return false, nil
	}

	m.phase = phaseFiring
	if err := m.Apply(t, states, variables, m.activated); err != nil {
		return true, err
	}
	m.fired++

	// A post-reset test value of exactly zero keeps the previous reference,
	// since zero would satisfy the activation test on every later check.
	m.Evaluate(t, states, variables)
	for i, v := range m.test {
		if v != 0 {
			m.reference[i] = v
		}
	}
	m.phase = phaseArmed
	return true, nil
}

// Apply runs the apply function of every reset flagged in activated, in
// ascending order.
func (m *ResetMachine) Apply(t float64, states, variables []float64, activated []bool) error {
	for _, i := range m.byOrder {
		if !activated[i] {
			continue
		}
		if err := m.specs[i].Apply(t, states, variables); err != nil {
			return &ResetError{Index: i, Order: m.specs[i].Order, Time: t, Wrapped: err}
		}
	}
	return nil
}

// Reference returns a copy of the current reference vector.
func (m *ResetMachine) Reference() []float64 {
	out := make([]float64, len(m.reference))
	copy(out, m.reference)
	return out
}

// Fired returns the number of firings since the machine was created.
func (m *ResetMachine) Fired() int { return m.fired }

func (m *ResetMachine) Len() int { return len(m.specs) }
