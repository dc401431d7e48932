package experiment

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/cellsolver/internal/config"
	"github.com/san-kum/cellsolver/internal/sim"
)

// Experiment is one configured run: a model from the registry, a solver
// and the simulation parameters of a config file.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	model    *sim.Model
	provider sim.Provider
	logger   *slog.Logger
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// Setup binds the model and resolves its provider.
func (e *Experiment) Setup() error {
	m, err := e.registry.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	p, err := e.registry.GetProvider(e.cfg.Model, e.cfg.Stimulus)
	if err != nil {
		return err
	}
	e.model, e.provider = m, p
	return nil
}

func (e *Experiment) Options() sim.Options {
	return sim.Options{
		Solver:   e.cfg.Solver,
		Provider: e.provider,
		Timing:   sim.Timing{Repeats: e.cfg.Timeit},
		Logger:   e.logger,
	}
}

func (e *Experiment) Run() (*sim.Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return sim.Run(e.model, e.cfg.Parameters(), e.Options())
}

// Compare runs the experiment once per solver, concurrently.
func (e *Experiment) Compare(solvers []string) ([]*sim.Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	jobs := make([]sim.Job, len(solvers))
	for i, s := range solvers {
		opts := e.Options()
		opts.Solver = s
		opts.Timing = sim.Timing{}
		jobs[i] = sim.Job{Name: s, Params: e.cfg.Parameters(), Options: opts}
	}
	return sim.RunMany(e.model, jobs)
}

func (e *Experiment) Model() *sim.Model {
	return e.model
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
