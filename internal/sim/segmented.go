package sim

import (
	"math"

	"github.com/san-kum/cellsolver/internal/integrators"
)

// segmented drives an integrators.Integrator from output request to output
// request at the result step. The embedded pairs pick their own substeps,
// bounded by the integration step size; rk4 steps at the integration step.
// Whenever a reset fires the integrator is restarted from the post-reset
// state, since its step history describes an ODE that no longer applies.
func (r *run) segmented() error {
	t0, t1 := r.params.Start(), r.params.End()
	rs := r.params.Result.StepSize

	cfg := integrators.DefaultConfig()
	cfg.InitialStep = r.params.Integration.StepSize
	cfg.MaxStep = r.params.Integration.StepSize
	if r.opts.RelTol > 0 {
		cfg.RelTol = r.opts.RelTol
	}
	if r.opts.AbsTol > 0 {
		cfg.AbsTol = r.opts.AbsTol
	}
	solver, err := integrators.NewIntegrator(r.strat.solver, r.derivative, cfg)
	if err != nil {
		return configErrorf("%v", err)
	}
	defer func() {
		stats := solver.Stats()
		r.solverStats = &stats
	}()

	solver.SetInitialValue(r.states, t0)
	r.arm(t0)
	if err := r.evaluate(t0); err != nil {
		return err
	}
	r.sampler.Record(t0, r.states, r.variables)

	for m := 1; ; m++ {
		tOut := t0 + float64(m)*rs
		if tOut > t1+TimeTolerance {
			break
		}
		if math.Abs(tOut-t1) <= TimeTolerance {
			tOut = t1
		}
		if err := r.advance(solver, tOut); err != nil {
			return err
		}
	}

	if !r.sampler.HasEnd() {
		if err := r.advance(solver, t1); err != nil {
			return err
		}
	}
	return nil
}

// advance integrates to tOut, applies any resets and records a sample.
func (r *run) advance(solver integrators.Integrator, tOut float64) error {
	err := solver.Integrate(tOut)
	if r.evalErr != nil {
		return r.evalErr
	}
	if err != nil {
		return &NumericalFailureError{Step: r.steps, Time: solver.T(), Wrapped: err}
	}
	copy(r.states, solver.Y())
	r.steps++

	fired, err := r.checkResets(tOut)
	if err != nil {
		return err
	}
	if fired {
		solver.SetInitialValue(r.states, tOut)
		r.log.Debug("solver reinitialized after reset", "t", tOut)
	}

	if err := r.evaluate(tOut); err != nil {
		return err
	}
	r.sampler.Record(tOut, r.states, r.variables)
	return nil
}

// derivative exposes the model's rate function to the solver. Provider
// errors cannot cross the solver boundary, so the first one is kept and
// reported after Integrate returns.
func (r *run) derivative(t float64, y, dydt []float64) {
	if err := r.coupling.rates(t, y, dydt, r.variables); err != nil && r.evalErr == nil {
		r.evalErr = err
	}
}
