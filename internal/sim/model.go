package sim

import "fmt"

// Vectors is the part of the model contract shared by every capability
// kind: vector construction and the computed-constant hook.
type Vectors interface {
	CreateStateVector() []float64
	CreateVariableVector() []float64
	CreateRateVector() []float64
	ComputeComputedConstants(variables []float64)
}

// Base is a model whose rates depend only on its own state and variables.
type Base interface {
	Vectors
	Initialize(states, variables []float64)
	ComputeRates(t float64, states, rates, variables []float64)
	ComputeVariables(t float64, states, rates, variables []float64)
}

// Driven is a model with variable slots fed by an external Provider.
// Its method set collides with Base by name, so a single type implements
// at most one of the two.
type Driven interface {
	Vectors
	// ExternalVariables lists the variable indices supplied by the provider.
	ExternalVariables() []int
	Initialize(states, variables []float64, p Provider)
	ComputeRates(t float64, states, rates, variables []float64, p Provider)
	ComputeVariables(t float64, states, rates, variables []float64, p Provider)
}

// ResetCapable is implemented by models with discrete reset events.
type ResetCapable interface {
	Resets() []ResetSpec
}

// Kind is the declared capability set of a model.
type Kind uint8

const (
	KindBase Kind = iota
	KindResetCapable
	KindExternallyDriven
	KindBoth
)

func (k Kind) Resettable() bool { return k == KindResetCapable || k == KindBoth }

func (k Kind) Driven() bool { return k == KindExternallyDriven || k == KindBoth }

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindResetCapable:
		return "reset-capable"
	case KindExternallyDriven:
		return "externally-driven"
	case KindBoth:
		return "reset-capable+externally-driven"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Descriptor declares a model at registration time.
type Descriptor struct {
	Info Info
	Kind Kind
	// New returns the implementation; it must satisfy Base or Driven
	// according to Kind, and ResetCapable exactly when Kind says so.
	New func() any
}

// Model is a descriptor whose implementation has been checked against its
// declared kind. It holds no per-run state and may be shared by
// concurrent runs provided the implementation keeps none either.
type Model struct {
	Info Info
	Kind Kind

	vectors Vectors
	base    Base
	driven  Driven
	slots   []int
	resets  []ResetSpec

	nState int
	nVar   int
}

// Bind instantiates the descriptor and validates it once, eagerly. A
// model whose implementation disagrees with its declared kind is rejected
// rather than run with a narrower or wider strategy.
func Bind(d Descriptor) (*Model, error) {
	if d.Kind > KindBoth {
		return nil, configErrorf("model %q: invalid kind %v", d.Info.Name, d.Kind)
	}
	if d.New == nil {
		return nil, configErrorf("model %q: descriptor has no constructor", d.Info.Name)
	}
	impl := d.New()
	if impl == nil {
		return nil, configErrorf("model %q: constructor returned nil", d.Info.Name)
	}

	m := &Model{Info: d.Info, Kind: d.Kind}

	base, isBase := impl.(Base)
	driven, isDriven := impl.(Driven)
	switch {
	case d.Kind.Driven() && isDriven:
		m.driven, m.vectors = driven, driven
	case d.Kind.Driven() && isBase:
		return nil, configErrorf("model %q: declared %v but implements base signatures without a provider argument", d.Info.Name, d.Kind)
	case !d.Kind.Driven() && isBase:
		m.base, m.vectors = base, base
	case !d.Kind.Driven() && isDriven:
		return nil, configErrorf("model %q: declared %v but implements externally driven signatures", d.Info.Name, d.Kind)
	default:
		return nil, configErrorf("model %q: implementation %T lacks the functions required for %v", d.Info.Name, impl, d.Kind)
	}

	rc, isReset := impl.(ResetCapable)
	switch {
	case d.Kind.Resettable() && !isReset:
		return nil, configErrorf("model %q: declared %v but has no Resets()", d.Info.Name, d.Kind)
	case !d.Kind.Resettable() && isReset:
		return nil, configErrorf("model %q: implements Resets() but is declared %v", d.Info.Name, d.Kind)
	case isReset:
		m.resets = rc.Resets()
		for i, r := range m.resets {
			if r.Test == nil || r.Apply == nil {
				return nil, configErrorf("model %q: reset %d is missing its test or apply function", d.Info.Name, i)
			}
		}
	}

	m.nState = len(m.vectors.CreateStateVector())
	m.nVar = len(m.vectors.CreateVariableVector())
	if n := len(m.vectors.CreateRateVector()); n != m.nState {
		return nil, configErrorf("model %q: rate vector length %d differs from state vector length %d", d.Info.Name, n, m.nState)
	}
	if len(d.Info.States) != m.nState {
		return nil, configErrorf("model %q: %d state channels described for %d states", d.Info.Name, len(d.Info.States), m.nState)
	}
	if len(d.Info.Variables) != m.nVar {
		return nil, configErrorf("model %q: %d variable channels described for %d variables", d.Info.Name, len(d.Info.Variables), m.nVar)
	}

	if m.driven != nil {
		seen := make(map[int]bool)
		for _, idx := range m.driven.ExternalVariables() {
			if idx < 0 || idx >= m.nVar {
				return nil, configErrorf("model %q: external variable index %d out of range [0, %d)", d.Info.Name, idx, m.nVar)
			}
			if seen[idx] {
				return nil, configErrorf("model %q: external variable index %d listed twice", d.Info.Name, idx)
			}
			seen[idx] = true
			m.slots = append(m.slots, idx)
		}
	}

	return m, nil
}

func (m *Model) StateCount() int { return m.nState }

func (m *Model) VariableCount() int { return m.nVar }

func (m *Model) ResetCount() int { return len(m.resets) }

// ExternalSlots returns the provider-fed variable indices, nil for models
// that are not externally driven.
func (m *Model) ExternalSlots() []int {
	if m.slots == nil {
		return nil
	}
	out := make([]int, len(m.slots))
	copy(out, m.slots)
	return out
}
