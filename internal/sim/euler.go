package sim

import (
	"errors"

	"github.com/san-kum/cellsolver/internal/integrators"
)

var errNonFinite = errors.New("state is not finite (NaN or Inf detected)")

// euler integrates with fixed step h. The initial state is always sampled
// at t0. Step k starts at t0 + k*h; the state is sampled before it is
// advanced, and resets are checked at the end of every step. A short final
// step lands the last sample on t1.
func (r *run) euler() error {
	h := r.params.Integration.StepSize
	t0, t1 := r.params.Start(), r.params.End()

	r.arm(t0)
	if err := r.evaluate(t0); err != nil {
		return err
	}
	r.sampler.Record(t0, r.states, r.variables)

	t := t0
	for k := 1; ; k++ {
		next := t0 + float64(k)*h
		if next > t1+TimeTolerance {
			break
		}
		if err := r.step(t, next, h); err != nil {
			return err
		}
		t = next
	}

	if t1-t > TimeTolerance {
		if err := r.step(t, t1, t1-t); err != nil {
			return err
		}
	}
	return r.sampleEnd()
}

// step advances the state from t to next with a single Euler update of
// size h.
func (r *run) step(t, next, h float64) error {
	if err := r.coupling.rates(t, r.states, r.rates, r.variables); err != nil {
		return err
	}
	if r.sampler.Due(t) {
		if err := r.coupling.variables(t, r.states, r.rates, r.variables); err != nil {
			return err
		}
		r.sampler.Record(t, r.states, r.variables)
	}

	integrators.EulerStep(r.states, r.rates, h)
	r.steps++
	if !IsFinite(r.states) {
		return &NumericalFailureError{Step: r.steps, Time: next, Wrapped: errNonFinite}
	}

	_, err := r.checkResets(next)
	return err
}
