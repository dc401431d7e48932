package sim

import (
	"math"
	"strings"
)

type IntegrationParams struct {
	StepSize float64   `json:"step_size" yaml:"step_size"`
	Interval []float64 `json:"interval" yaml:"interval"`
}

// ChannelConfig selects reported channels by "component.name".
type ChannelConfig struct {
	ParameterIncludes []string `json:"parameter_includes,omitempty" yaml:"parameter_includes,omitempty"`
	ParameterExcludes []string `json:"parameter_excludes,omitempty" yaml:"parameter_excludes,omitempty"`
}

type ResultParams struct {
	StepSize float64       `json:"step_size" yaml:"step_size"`
	Config   ChannelConfig `json:"config" yaml:"config"`
}

// Parameters are the simulation parameters of one run.
type Parameters struct {
	Integration IntegrationParams `json:"integration" yaml:"integration"`
	Result      ResultParams      `json:"result" yaml:"result"`
}

func DefaultParameters() Parameters {
	return Parameters{
		Integration: IntegrationParams{StepSize: 0.001, Interval: []float64{0, 100}},
		Result:      ResultParams{StepSize: 0.001},
	}
}

// Start returns t0.
func (p Parameters) Start() float64 { return p.Integration.Interval[0] }

// End returns t1.
func (p Parameters) End() float64 { return p.Integration.Interval[1] }

// Validate checks the structural invariants: a two-point increasing
// interval, finite positive step sizes and well-formed channel ids.
func (p Parameters) Validate() error {
	if len(p.Integration.Interval) != 2 {
		return configErrorf("interval must have exactly two points, got %d", len(p.Integration.Interval))
	}
	t0, t1 := p.Start(), p.End()
	if math.IsNaN(t0) || math.IsNaN(t1) || math.IsInf(t0, 0) || math.IsInf(t1, 0) {
		return configErrorf("interval [%g, %g] is not finite", t0, t1)
	}
	if t0 >= t1 {
		return configErrorf("interval start %g must precede end %g", t0, t1)
	}
	if !(p.Integration.StepSize > 0) || math.IsInf(p.Integration.StepSize, 0) {
		return configErrorf("integration step size must be positive, got %g", p.Integration.StepSize)
	}
	if !(p.Result.StepSize > 0) || math.IsInf(p.Result.StepSize, 0) {
		return configErrorf("result step size must be positive, got %g", p.Result.StepSize)
	}
	for _, id := range p.Result.Config.ParameterIncludes {
		if _, _, err := splitChannelID(id); err != nil {
			return err
		}
	}
	for _, id := range p.Result.Config.ParameterExcludes {
		if _, _, err := splitChannelID(id); err != nil {
			return err
		}
	}
	return nil
}

func splitChannelID(id string) (component, name string, err error) {
	component, name, ok := strings.Cut(id, ".")
	if !ok || component == "" || name == "" || strings.Contains(name, ".") {
		return "", "", configErrorf("channel id %q is not of the form component.name", id)
	}
	return component, name, nil
}
