package config

import (
	"sort"

	"github.com/san-kum/cellsolver/internal/sim"
)

func preset(model, solver string, step, t1, resultStep float64) *Config {
	return &Config{
		Model:       model,
		Solver:      solver,
		Integration: sim.IntegrationParams{StepSize: step, Interval: []float64{0, t1}},
		Result:      sim.ResultParams{StepSize: resultStep},
	}
}

func withStimulus(c *Config, s StimulusConfig) *Config {
	c.Stimulus = &s
	return c
}

func withIncludes(c *Config, ids ...string) *Config {
	c.Result.Config.ParameterIncludes = ids
	return c
}

var Presets = map[string]map[string]*Config{
	"simple_ode": {
		"sawtooth": preset("simple_ode", "euler", 0.001, 10, 0.01),
		"adaptive": preset("simple_ode", "dopri5", 0.01, 10, 0.01),
		"rk4":      preset("simple_ode", "rk4", 0.001, 10, 0.01),
	},
	"linear": {
		"unit": preset("linear", "euler", 0.1, 10, 0.1),
	},
	"hodgkin_huxley_squid_axon_model_1952": {
		"single": preset("hodgkin_huxley_squid_axon_model_1952", "euler", 0.01, 50, 0.1),
		"fine":   preset("hodgkin_huxley_squid_axon_model_1952", "euler", 0.001, 50, 0.01),
		"voltage": withIncludes(
			preset("hodgkin_huxley_squid_axon_model_1952", "dopri5", 0.05, 50, 0.1),
			"membrane.V",
		),
		"currents": withIncludes(
			preset("hodgkin_huxley_squid_axon_model_1952", "euler", 0.01, 50, 0.1),
			"sodium_channel.i_Na", "potassium_channel.i_K", "leakage_current.i_L",
		),
	},
	"hh_external": {
		"single": withStimulus(
			preset("hh_external", "euler", 0.01, 50, 0.1),
			StimulusConfig{Amplitude: -20, Start: 10, Duration: 0.5},
		),
		"train": withStimulus(
			preset("hh_external", "dopri5", 0.05, 100, 0.1),
			StimulusConfig{Amplitude: -20, Start: 10, Duration: 0.5, Period: 20},
		),
	},
	"lif": {
		"subthreshold": withStimulus(
			preset("lif", "euler", 0.01, 100, 0.1),
			StimulusConfig{Amplitude: 1.4, Start: 5},
		),
		"regular": withStimulus(
			preset("lif", "euler", 0.01, 100, 0.1),
			StimulusConfig{Amplitude: 2.0, Start: 5},
		),
		"fast": withStimulus(
			preset("lif", "bs23", 0.01, 100, 0.1),
			StimulusConfig{Amplitude: 4.0, Start: 5},
		),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
