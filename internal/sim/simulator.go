package sim

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/cellsolver/internal/integrators"
)

// SolverEuler is the explicit Euler solver run by the step loop.
const SolverEuler = "euler"

// KnownSolvers lists every accepted solver identifier, euler first.
func KnownSolvers() []string {
	return append([]string{SolverEuler}, integrators.Names()...)
}

// Timing asks Run to repeat the integration Repeats extra times and report
// the average wall time. Zero disables timing.
type Timing struct {
	Repeats int
}

type TimingReport struct {
	Repeats int
	Average time.Duration
}

type Options struct {
	Solver   string
	Provider Provider
	Timing   Timing
	Logger   *slog.Logger

	// Tolerances of the adaptive solvers; zero selects the solver defaults.
	RelTol float64
	AbsTol float64
}

type Summary struct {
	Strategy        string
	Steps           int
	Resets          int
	ExternalUpdates int
	Solver          *integrators.Stats
}

type Result struct {
	Series  *Series
	Summary Summary
	Timing  *TimingReport
}

// strategy is the integrator variant chosen for one solver and model kind.
type strategy struct {
	solver    string
	segmented bool
	resets    bool
	driven    bool
}

func (s strategy) String() string {
	name := s.solver
	if s.resets {
		name += "+resets"
	}
	if s.driven {
		name += "+external"
	}
	return name
}

// selectStrategy picks the variant supporting exactly the capabilities of
// kind. There is no fallback solver.
func selectStrategy(solver string, kind Kind) (strategy, error) {
	s := strategy{solver: solver, resets: kind.Resettable(), driven: kind.Driven()}
	if solver == SolverEuler {
		return s, nil
	}
	for _, m := range integrators.Names() {
		if m == solver {
			s.segmented = true
			return s, nil
		}
	}
	return strategy{}, &UnknownSolverError{Name: solver, Known: KnownSolvers()}
}

// Run integrates m over params and returns the sampled, filtered series.
//
// Validation failures return a nil Result. A numerical failure returns the
// samples collected so far together with a *NumericalFailureError. Reset
// and external variable errors abort the run with a nil Result.
func Run(m *Model, params Parameters, opts Options) (*Result, error) {
	if m == nil {
		return nil, configErrorf("nil model")
	}
	strat, err := selectStrategy(opts.Solver, m.Kind)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	filter, err := NewChannelFilter(params.Result.Config)
	if err != nil {
		return nil, err
	}
	if m.Kind.Driven() {
		if err := validateProvider(opts.Provider); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("model", m.Info.Name, "strategy", strat.String())
	log.Debug("starting run", "interval", params.Integration.Interval, "step", params.Integration.StepSize, "result_step", params.Result.StepSize)

	res, err := execute(m, params, strat, filter, opts, log)
	if err != nil {
		if errors.Is(err, ErrNumericalFailure) {
			log.Warn("numerical failure, returning partial results", "samples", res.Series.Len(), "err", err)
			return res, err
		}
		return nil, err
	}

	if opts.Timing.Repeats > 0 {
		start := time.Now()
		for i := 0; i < opts.Timing.Repeats; i++ {
			if _, err := execute(m, params, strat, filter, opts, log); err != nil {
				return nil, err
			}
		}
		res.Timing = &TimingReport{
			Repeats: opts.Timing.Repeats,
			Average: time.Since(start) / time.Duration(opts.Timing.Repeats),
		}
	}

	log.Debug("run complete", "samples", res.Series.Len(), "steps", res.Summary.Steps, "resets", res.Summary.Resets)
	return res, nil
}

func execute(m *Model, params Parameters, strat strategy, filter *ChannelFilter, opts Options, log *slog.Logger) (*Result, error) {
	r, err := newRun(m, params, strat, opts, log)
	if err != nil {
		return nil, err
	}

	if strat.segmented {
		err = r.segmented()
	} else {
		err = r.euler()
	}

	res := &Result{Series: r.sampler.Series(m.Info, filter), Summary: r.summary()}
	return res, err
}

// run holds everything one integration owns. Nothing in it is shared with
// other runs.
type run struct {
	model  *Model
	params Parameters
	strat  strategy
	opts   Options
	log    *slog.Logger

	states    []float64
	rates     []float64
	variables []float64

	coupling *coupling
	resets   *ResetMachine
	sampler  *Sampler

	steps       int
	solverStats *integrators.Stats
	evalErr     error
}

func newRun(m *Model, params Parameters, strat strategy, opts Options, log *slog.Logger) (*run, error) {
	c, err := newCoupling(m, opts.Provider)
	if err != nil {
		return nil, err
	}
	r := &run{
		model:     m,
		params:    params,
		strat:     strat,
		opts:      opts,
		log:       log,
		states:    m.vectors.CreateStateVector(),
		rates:     m.vectors.CreateRateVector(),
		variables: m.vectors.CreateVariableVector(),
		coupling:  c,
		sampler:   NewSampler(params.Start(), params.End(), params.Result.StepSize, m.nState, m.nVar),
	}
	if strat.resets {
		r.resets = NewResetMachine(m.resets)
	}
	if err := r.coupling.initialize(r.states, r.variables); err != nil {
		return nil, err
	}
	return r, nil
}

// evaluate refreshes rates and variables at t.
func (r *run) evaluate(t float64) error {
	if err := r.coupling.rates(t, r.states, r.rates, r.variables); err != nil {
		return err
	}
	return r.coupling.variables(t, r.states, r.rates, r.variables)
}

// sampleEnd records the final point at t1 with a fresh evaluation unless
// it is already present.
func (r *run) sampleEnd() error {
	if r.sampler.HasEnd() {
		return nil
	}
	t1 := r.params.End()
	if err := r.evaluate(t1); err != nil {
		return err
	}
	r.sampler.Record(t1, r.states, r.variables)
	return nil
}

func (r *run) arm(t float64) {
	if r.resets != nil {
		r.resets.Arm(t, r.states, r.variables)
	}
}

func (r *run) checkResets(t float64) (bool, error) {
	if r.resets == nil {
		return false, nil
	}
	fired, err := r.resets.Check(t, r.states, r.variables)
	if err != nil {
		return true, err
	}
	if fired {
		r.log.Debug("reset fired", "t", t, "firings", r.resets.Fired())
	}
	return fired, nil
}

func (r *run) summary() Summary {
	s := Summary{
		Strategy:        r.strat.String(),
		Steps:           r.steps,
		ExternalUpdates: r.coupling.updates(),
		Solver:          r.solverStats,
	}
	if r.resets != nil {
		s.Resets = r.resets.Fired()
	}
	return s
}
