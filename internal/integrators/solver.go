package integrators

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrUnknownMethod = errors.New("integrators: unknown method")
	ErrStepTooSmall  = errors.New("integrators: adaptive timestep below minimum")
	ErrTooManySteps  = errors.New("integrators: step budget exhausted before output time")
	ErrBackwards     = errors.New("integrators: output time precedes current time")
)

// Func writes dy/dt at (t, y) into dydt. Every entry of dydt must be set.
type Func func(t float64, y, dydt []float64)

type Config struct {
	RelTol      float64
	AbsTol      float64
	InitialStep float64 // 0 selects a step from the initial derivative
	MaxStep     float64 // 0 means unbounded
	MinStep     float64
	MaxSteps    int // accepted steps allowed per Integrate call
	Safety      float64
	MinScale    float64
	MaxScale    float64
}

func DefaultConfig() Config {
	return Config{
		RelTol:   1e-6,
		AbsTol:   1e-9,
		MinStep:  1e-12,
		MaxSteps: 500000,
		Safety:   0.9,
		MinScale: 0.2,
		MaxScale: 10.0,
	}
}

type Stats struct {
	Steps       int
	Rejected    int
	Evaluations int
}

// Solver advances an initial value problem with an embedded Runge-Kutta
// pair, choosing its own internal steps between requested output times.
// A Solver is not safe for concurrent use.
type Solver struct {
	tab *Tableau
	f   Func
	cfg Config

	t       float64
	y       []float64
	yNew    []float64
	errEst  []float64
	scratch []float64
	k       [][]float64

	h     float64
	stats Stats
	err   error
}

// Integrator is what the simulation drivers need from a solver: restart
// from a state, advance to an output time and read the state back.
type Integrator interface {
	SetInitialValue(y []float64, t float64)
	Integrate(tOut float64) error
	T() float64
	Y() []float64
	Stats() Stats
	Method() string
}

// aliases maps the scipy integrator names used by existing parameter files
// onto the embedded pair that takes their place.
var aliases = map[string]string{
	"dop853": "dopri5",
	"vode":   "bs23",
}

// Methods lists the embedded Runge-Kutta pairs in sorted order.
func Methods() []string {
	names := make([]string, 0, len(tableaus))
	for name := range tableaus {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names lists every accepted method identifier in sorted order: the
// embedded pairs, their aliases and rk4.
func Names() []string {
	names := append(Methods(), MethodRK4)
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// Resolve maps an alias to its method name. Unknown names are returned
// unchanged.
func Resolve(method string) string {
	if target, ok := aliases[method]; ok {
		return target
	}
	return method
}

// NewIntegrator returns the integrator registered under method.
func NewIntegrator(method string, f Func, cfg Config) (Integrator, error) {
	if method == MethodRK4 {
		return NewRK4(f, cfg)
	}
	return New(method, f, cfg)
}

func New(method string, f Func, cfg Config) (*Solver, error) {
	tab, ok := tableaus[Resolve(method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	if f == nil {
		return nil, errors.New("integrators: nil derivative function")
	}
	if cfg.RelTol <= 0 || cfg.AbsTol <= 0 {
		return nil, fmt.Errorf("integrators: tolerances must be positive (rtol=%g, atol=%g)", cfg.RelTol, cfg.AbsTol)
	}
	return &Solver{tab: tab, f: f, cfg: cfg}, nil
}

// SetInitialValue restarts the problem from (t, y). Step size history and
// any previous failure are discarded.
func (s *Solver) SetInitialValue(y []float64, t float64) {
	n := len(y)
	if len(s.y) != n {
		s.y = make([]float64, n)
		s.yNew = make([]float64, n)
		s.errEst = make([]float64, n)
		s.scratch = make([]float64, n)
		s.k = make([][]float64, s.tab.Stages())
		for i := range s.k {
			s.k[i] = make([]float64, n)
		}
	}
	copy(s.y, y)
	s.t = t
	s.h = 0
	s.err = nil
}

func (s *Solver) T() float64 { return s.t }

// Y returns the current solution. The slice is owned by the solver and
// is overwritten by the next Integrate call.
func (s *Solver) Y() []float64 { return s.y }

func (s *Solver) Successful() bool { return s.err == nil }

func (s *Solver) Stats() Stats { return s.stats }

func (s *Solver) Method() string { return s.tab.Name }

// Integrate advances the solution to exactly tOut.
func (s *Solver) Integrate(tOut float64) error {
	if s.err != nil {
		return s.err
	}
	if s.y == nil {
		return errors.New("integrators: Integrate called before SetInitialValue")
	}
	if tOut < s.t {
		return s.fail(fmt.Errorf("%w: t=%g, requested %g", ErrBackwards, s.t, tOut))
	}
	if tOut == s.t {
		return nil
	}
	if s.h == 0 {
		s.h = s.initialStep(tOut)
	}

	accepted := 0
	for s.t < tOut {
		if s.cfg.MaxSteps > 0 && accepted >= s.cfg.MaxSteps {
			return s.fail(fmt.Errorf("%w: %d steps at t=%g", ErrTooManySteps, accepted, s.t))
		}

		h := s.h
		last := false
		if s.t+h >= tOut {
			h = tOut - s.t
			last = true
		}

		errNorm := s.attempt(h)
		if errNorm <= 1 {
			copy(s.y, s.yNew)
			if last {
				s.t = tOut
			} else {
				s.t += h
			}
			accepted++
			s.stats.Steps++

			next := h * s.grow(errNorm)
			if last && h < s.h {
				next = math.Max(next, s.h)
			}
			s.h = s.clamp(next)
			continue
		}

		s.stats.Rejected++
		s.h = h * s.shrink(errNorm)
		if s.h < s.cfg.MinStep {
			return s.fail(fmt.Errorf("%w: h=%g at t=%g", ErrStepTooSmall, s.h, s.t))
		}
	}
	return nil
}

// attempt takes one trial step of size h from (t, y), leaving the result
// in yNew, and returns the scaled RMS error estimate. Non-finite results
// report +Inf so the step is rejected.
func (s *Solver) attempt(h float64) float64 {
	tab := s.tab
	for i := 0; i < tab.Stages(); i++ {
		copy(s.scratch, s.y)
		for j, a := range tab.A[i] {
			if a != 0 {
				floats.AddScaled(s.scratch, h*a, s.k[j])
			}
		}
		s.f(s.t+tab.C[i]*h, s.scratch, s.k[i])
		s.stats.Evaluations++
	}

	copy(s.yNew, s.y)
	for i := range s.errEst {
		s.errEst[i] = 0
	}
	for j := 0; j < tab.Stages(); j++ {
		if tab.B[j] != 0 {
			floats.AddScaled(s.yNew, h*tab.B[j], s.k[j])
		}
		if tab.E[j] != 0 {
			floats.AddScaled(s.errEst, h*tab.E[j], s.k[j])
		}
	}

	for i := range s.errEst {
		sc := s.cfg.AbsTol + s.cfg.RelTol*math.Max(math.Abs(s.y[i]), math.Abs(s.yNew[i]))
		s.scratch[i] = s.errEst[i] / sc
	}
	if len(s.scratch) == 0 {
		return 0
	}
	errNorm := floats.Norm(s.scratch, 2) / math.Sqrt(float64(len(s.scratch)))
	if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
		return math.Inf(1)
	}
	return errNorm
}

func (s *Solver) grow(errNorm float64) float64 {
	if errNorm == 0 {
		return s.cfg.MaxScale
	}
	return math.Min(s.cfg.MaxScale, s.cfg.Safety*math.Pow(errNorm, -1.0/float64(s.tab.ErrorOrder)))
}

func (s *Solver) shrink(errNorm float64) float64 {
	if math.IsInf(errNorm, 1) {
		return s.cfg.MinScale
	}
	return math.Max(s.cfg.MinScale, s.cfg.Safety*math.Pow(errNorm, -1.0/float64(s.tab.ErrorOrder)))
}

func (s *Solver) clamp(h float64) float64 {
	if s.cfg.MaxStep > 0 && h > s.cfg.MaxStep {
		return s.cfg.MaxStep
	}
	return h
}

func (s *Solver) initialStep(tOut float64) float64 {
	span := tOut - s.t
	h := s.cfg.InitialStep
	if h <= 0 {
		s.f(s.t, s.y, s.k[0])
		s.stats.Evaluations++
		var d0, d1 float64
		for i := range s.y {
			sc := s.cfg.AbsTol + s.cfg.RelTol*math.Abs(s.y[i])
			d0 += (s.y[i] / sc) * (s.y[i] / sc)
			d1 += (s.k[0][i] / sc) * (s.k[0][i] / sc)
		}
		d0, d1 = math.Sqrt(d0), math.Sqrt(d1)
		if d0 < 1e-5 || d1 < 1e-5 || math.IsNaN(d1) {
			h = 1e-6
		} else {
			h = 0.01 * d0 / d1
		}
	}
	h = s.clamp(h)
	if h > span {
		h = span
	}
	return h
}

func (s *Solver) fail(err error) error {
	s.err = err
	return err
}
