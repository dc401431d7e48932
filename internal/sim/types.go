package sim

import "math"

// ChannelInfo identifies one reported quantity. Name and Component form
// the identity used for filtering; Units is carried for presentation.
type ChannelInfo struct {
	Name      string `json:"name" yaml:"name"`
	Component string `json:"component" yaml:"component"`
	Units     string `json:"units" yaml:"units"`
}

// ID returns the "component.name" identifier.
func (c ChannelInfo) ID() string {
	return c.Component + "." + c.Name
}

// Info describes the variable of integration and the state and variable
// channels of a model, index for index with its vectors.
type Info struct {
	Name      string
	VOI       ChannelInfo
	States    []ChannelInfo
	Variables []ChannelInfo
}

// Channels returns state channels followed by variable channels, the
// order in which samples are recorded.
func (i Info) Channels() []ChannelInfo {
	out := make([]ChannelInfo, 0, len(i.States)+len(i.Variables))
	out = append(out, i.States...)
	out = append(out, i.Variables...)
	return out
}

// NewVector returns a vector of length n filled with NaN, so entries a
// model forgets to initialize are visible in the output.
func NewVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

// IsFinite reports whether every entry of v is neither NaN nor infinite.
func IsFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
