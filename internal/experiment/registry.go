package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cellsolver/internal/config"
	"github.com/san-kum/cellsolver/internal/models"
	"github.com/san-kum/cellsolver/internal/sim"
)

type entry struct {
	descriptor func() sim.Descriptor
	stimulus   *config.StimulusConfig
}

// Registry maps model names to descriptors and, for externally driven
// models, to the stimulus used when the caller supplies none.
type Registry struct {
	models map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]entry)}

	r.Register(models.SimpleODEDescriptor, nil)
	r.Register(models.LinearDescriptor, nil)
	r.Register(models.HodgkinHuxleyDescriptor, nil)
	r.Register(models.HHExternalDescriptor, stimulusConfig(models.DefaultPulseStimulus()))
	r.Register(models.LIFDescriptor, stimulusConfig(models.DefaultInputCurrent()))

	return r
}

func stimulusConfig(p *models.PulseStimulus) *config.StimulusConfig {
	return &config.StimulusConfig{
		Amplitude: p.Amplitude,
		Start:     p.Start,
		Duration:  p.Duration,
		Period:    p.Period,
	}
}

func pulse(s *config.StimulusConfig) *models.PulseStimulus {
	return &models.PulseStimulus{
		Amplitude: s.Amplitude,
		Start:     s.Start,
		Duration:  s.Duration,
		Period:    s.Period,
	}
}

// Register adds a model under its descriptor name. stimulus is the
// default input of an externally driven model and nil otherwise.
func (r *Registry) Register(descriptor func() sim.Descriptor, stimulus *config.StimulusConfig) {
	r.models[descriptor().Info.Name] = entry{descriptor: descriptor, stimulus: stimulus}
}

// GetModel binds the named model.
func (r *Registry) GetModel(name string) (*sim.Model, error) {
	e, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return sim.Bind(e.descriptor())
}

// Stimulus returns a copy of override, or of the model default when
// override is nil. It returns nil for models that take no external input.
func (r *Registry) Stimulus(name string, override *config.StimulusConfig) (*config.StimulusConfig, error) {
	e, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	if e.stimulus == nil {
		return nil, nil
	}
	s := *e.stimulus
	if override != nil {
		s = *override
	}
	return &s, nil
}

// GetProvider returns the provider for the named model, or nil when the
// model takes no external input.
func (r *Registry) GetProvider(name string, stimulus *config.StimulusConfig) (sim.Provider, error) {
	s, err := r.Stimulus(name, stimulus)
	if err != nil || s == nil {
		return nil, err
	}
	return pulse(s), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the descriptor of the named model without binding it.
func (r *Registry) Describe(name string) (sim.Descriptor, bool) {
	e, ok := r.models[name]
	if !ok {
		return sim.Descriptor{}, false
	}
	return e.descriptor(), true
}
