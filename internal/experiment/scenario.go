package experiment

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cellsolver/internal/config"
	"github.com/san-kum/cellsolver/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset, or from the defaults when Preset is
// empty, and overrides whatever fields are set.
type ScenarioStep struct {
	Model      string                 `yaml:"model"`
	Preset     string                 `yaml:"preset"`
	Solver     string                 `yaml:"solver"`
	Interval   []float64              `yaml:"interval"`
	StepSize   float64                `yaml:"step_size"`
	ResultStep float64                `yaml:"result_step"`
	Stimulus   *config.StimulusConfig `yaml:"stimulus"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config resolves the step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Model, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", s.Preset, config.ListPresets(s.Model))
		}
	}
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.Solver != "" {
		cfg.Solver = s.Solver
	}
	if len(s.Interval) > 0 {
		if len(s.Interval) != 2 {
			return nil, fmt.Errorf("interval takes exactly two values, got %v", s.Interval)
		}
		cfg.SetInterval(s.Interval[0], s.Interval[1])
	}
	if s.StepSize != 0 {
		cfg.Integration.StepSize = s.StepSize
	}
	if s.ResultStep != 0 {
		cfg.Result.StepSize = s.ResultStep
	}
	if s.Stimulus != nil {
		st := *s.Stimulus
		cfg.Stimulus = &st
	}
	return cfg, nil
}

// StepResult pairs a finished step with the configuration it ran.
type StepResult struct {
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the steps completed so far. A numerical failure keeps its
// partial result as the last entry.
func RunScenario(scenario *Scenario, registry *Registry, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("running scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "model", cfg.Model, "solver", cfg.Solver)

		exp := New(cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		res, err := exp.Run()
		if res != nil {
			results = append(results, StepResult{Config: cfg, Result: res})
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
	}

	return results, nil
}
