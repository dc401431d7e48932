package integrators

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChristopherRabotin/ode"
)

// MethodRK4 is the classical fourth order Runge-Kutta method at a fixed
// step.
const MethodRK4 = "rk4"

var ErrNonFinite = errors.New("integrators: state is not finite")

// RK4 advances at a fixed step with ode.RK4. Each Integrate call is one
// blocking ode solve over the segment [T, tOut]; the step is shrunk evenly
// so the segment ends exactly on tOut. An RK4 is not safe for concurrent
// use.
type RK4 struct {
	f        Func
	step     float64
	maxSteps int

	t     float64
	y     []float64
	stats Stats
	err   error
}

// NewRK4 returns a fixed-step integrator. cfg.InitialStep is the step
// size; tolerances are not used.
func NewRK4(f Func, cfg Config) (*RK4, error) {
	if f == nil {
		return nil, errors.New("integrators: nil derivative function")
	}
	if !(cfg.InitialStep > 0) || math.IsInf(cfg.InitialStep, 0) {
		return nil, fmt.Errorf("integrators: rk4 needs a positive step, got %g", cfg.InitialStep)
	}
	return &RK4{f: f, step: cfg.InitialStep, maxSteps: cfg.MaxSteps}, nil
}

func (r *RK4) SetInitialValue(y []float64, t float64) {
	if len(r.y) != len(y) {
		r.y = make([]float64, len(y))
	}
	copy(r.y, y)
	r.t = t
	r.err = nil
}

func (r *RK4) T() float64 { return r.t }

func (r *RK4) Y() []float64 { return r.y }

func (r *RK4) Stats() Stats { return r.stats }

func (r *RK4) Method() string { return MethodRK4 }

func (r *RK4) Integrate(tOut float64) error {
	if r.err != nil {
		return r.err
	}
	if r.y == nil {
		return errors.New("integrators: Integrate called before SetInitialValue")
	}
	if tOut < r.t {
		return r.fail(fmt.Errorf("%w: t=%g, requested %g", ErrBackwards, r.t, tOut))
	}
	span := tOut - r.t
	if span == 0 {
		return nil
	}

	n := int(math.Ceil(span/r.step - 1e-9))
	if n < 1 {
		n = 1
	}
	if r.maxSteps > 0 && n > r.maxSteps {
		return r.fail(fmt.Errorf("%w: %d steps needed at t=%g", ErrTooManySteps, n, r.t))
	}

	seg := &segment{f: r.f, y: r.y, steps: n, stats: &r.stats}
	ode.NewRK4(r.t, span/float64(n), seg).Solve()
	r.t = tOut

	for _, v := range r.y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return r.fail(fmt.Errorf("%w at t=%g", ErrNonFinite, tOut))
		}
	}
	return nil
}

func (r *RK4) fail(err error) error {
	r.err = err
	return err
}

// segment is the ode.Integrable for one Integrate call. It stops on a step
// count rather than on time so accumulated rounding in the solver's
// abscissa cannot add or drop a step.
type segment struct {
	f     Func
	y     []float64
	steps int
	done  int
	stats *Stats
}

func (s *segment) GetState() []float64 { return s.y }

func (s *segment) SetState(t float64, y []float64) {
	copy(s.y, y)
	s.done++
	s.stats.Steps++
}

func (s *segment) Stop(t float64) bool { return s.done >= s.steps }

func (s *segment) Func(t float64, y []float64) []float64 {
	dydt := make([]float64, len(y))
	s.f(t, y, dydt)
	s.stats.Evaluations++
	return dydt
}
