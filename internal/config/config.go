package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cellsolver/internal/sim"
)

const (
	DefaultModel          = "simple_ode"
	DefaultSolver         = sim.SolverEuler
	DefaultStepSize       = 0.001
	DefaultResultStepSize = 0.001
	DefaultStart          = 0.0
	DefaultEnd            = 100.0
)

// Config is a parameter file. JSON files are accepted as well since the
// yaml decoder reads them unchanged.
type Config struct {
	Model       string                `yaml:"model"`
	Solver      string                `yaml:"solver"`
	Integration sim.IntegrationParams `yaml:"integration"`
	Result      sim.ResultParams      `yaml:"result"`
	Timeit      int                   `yaml:"timeit,omitempty"`
	Stimulus    *StimulusConfig       `yaml:"stimulus,omitempty"`
}

// StimulusConfig parameterizes the provider of externally driven models.
// A non-positive Duration keeps the stimulus on from Start onwards.
type StimulusConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	Start     float64 `yaml:"start"`
	Duration  float64 `yaml:"duration"`
	Period    float64 `yaml:"period"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:  DefaultModel,
		Solver: DefaultSolver,
		Integration: sim.IntegrationParams{
			StepSize: DefaultStepSize,
			Interval: []float64{DefaultStart, DefaultEnd},
		},
		Result: sim.ResultParams{StepSize: DefaultResultStepSize},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Parameters returns the simulation parameters of the file. The interval
// is copied so callers may modify it.
func (c *Config) Parameters() sim.Parameters {
	p := sim.Parameters{Integration: c.Integration, Result: c.Result}
	p.Integration.Interval = append([]float64(nil), c.Integration.Interval...)
	return p
}

// SetInterval replaces the integration interval.
func (c *Config) SetInterval(t0, t1 float64) {
	c.Integration.Interval = []float64{t0, t1}
}

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Integration.Interval = append([]float64(nil), c.Integration.Interval...)
	out.Result.Config.ParameterIncludes = append([]string(nil), c.Result.Config.ParameterIncludes...)
	out.Result.Config.ParameterExcludes = append([]string(nil), c.Result.Config.ParameterExcludes...)
	if c.Stimulus != nil {
		s := *c.Stimulus
		out.Stimulus = &s
	}
	return &out
}
