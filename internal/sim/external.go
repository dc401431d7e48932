package sim

import "fmt"

// Provider supplies values for the external variable slots of a Driven
// model. Init is called once per slot before integration starts; Update
// is called on every rate and variable evaluation.
type Provider interface {
	Init(index int) float64
	Update(t float64, states, rates, variables []float64, index int) float64
}

// ProviderFuncs adapts a pair of plain functions to Provider.
type ProviderFuncs struct {
	InitFunc   func(index int) float64
	UpdateFunc func(t float64, states, rates, variables []float64, index int) float64
}

func (p ProviderFuncs) Init(index int) float64 { return p.InitFunc(index) }

func (p ProviderFuncs) Update(t float64, states, rates, variables []float64, index int) float64 {
	return p.UpdateFunc(t, states, rates, variables, index)
}

func validateProvider(p Provider) error {
	switch pf := p.(type) {
	case nil:
		return &ExternalVariableError{Reason: "model is externally driven but no provider was supplied"}
	case ProviderFuncs:
		if pf.InitFunc == nil {
			return &ExternalVariableError{Reason: "provider has no init function"}
		}
		if pf.UpdateFunc == nil {
			return &ExternalVariableError{Reason: "provider has no update function"}
		}
	case *ProviderFuncs:
		if pf == nil {
			return &ExternalVariableError{Reason: "model is externally driven but no provider was supplied"}
		}
		return validateProvider(*pf)
	}
	return nil
}

// guardedProvider sits between the model and the caller's provider. It
// performs every Init up front, serves the model's own Init lookups from
// that cache, and refuses Update for slots it never initialized.
type guardedProvider struct {
	inner   Provider
	initial map[int]float64
	updates int
	err     error
}

func newGuardedProvider(inner Provider, slots []int) *guardedProvider {
	g := &guardedProvider{inner: inner, initial: make(map[int]float64, len(slots))}
	for _, idx := range slots {
		g.initial[idx] = inner.Init(idx)
	}
	return g
}

func (g *guardedProvider) Init(index int) float64 {
	v, ok := g.initial[index]
	if !ok {
		g.setErr(fmt.Sprintf("init requested for undeclared external variable %d", index))
	}
	return v
}

func (g *guardedProvider) Update(t float64, states, rates, variables []float64, index int) float64 {
	if _, ok := g.initial[index]; !ok {
		g.setErr(fmt.Sprintf("update requested for external variable %d before init", index))
		return 0
	}
	g.updates++
	return g.inner.Update(t, states, rates, variables, index)
}

func (g *guardedProvider) setErr(reason string) {
	if g.err == nil {
		g.err = &ExternalVariableError{Reason: reason}
	}
}

// coupling evaluates a model uniformly whether or not it is externally
// driven. It is created per run.
type coupling struct {
	base     Base
	driven   Driven
	provider *guardedProvider
}

func newCoupling(m *Model, p Provider) (*coupling, error) {
	if m.driven == nil {
		return &coupling{base: m.base}, nil
	}
	if err := validateProvider(p); err != nil {
		return nil, err
	}
	return &coupling{driven: m.driven, provider: newGuardedProvider(p, m.slots)}, nil
}

func (c *coupling) initialize(states, variables []float64) error {
	if c.driven != nil {
		c.driven.Initialize(states, variables, c.provider)
		c.driven.ComputeComputedConstants(variables)
		return c.provider.err
	}
	c.base.Initialize(states, variables)
	c.base.ComputeComputedConstants(variables)
	return nil
}

func (c *coupling) rates(t float64, states, rates, variables []float64) error {
	if c.driven != nil {
		c.driven.ComputeRates(t, states, rates, variables, c.provider)
		return c.provider.err
	}
	c.base.ComputeRates(t, states, rates, variables)
	return nil
}

func (c *coupling) variables(t float64, states, rates, variables []float64) error {
	if c.driven != nil {
		c.driven.ComputeVariables(t, states, rates, variables, c.provider)
		return c.provider.err
	}
	c.base.ComputeVariables(t, states, rates, variables)
	return nil
}

func (c *coupling) updates() int {
	if c.provider == nil {
		return 0
	}
	return c.provider.updates
}
