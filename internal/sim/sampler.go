package sim

import "math"

// TimeTolerance is the absolute tolerance used when comparing simulation
// times against sample and interval boundaries.
const TimeTolerance = 1e-12

// Series is a sampled run: X holds the sample times and Y[i] the values
// of Channels[i], index for index with X.
type Series struct {
	Title    string        `json:"title"`
	XInfo    ChannelInfo   `json:"x_info"`
	X        []float64     `json:"x"`
	Channels []ChannelInfo `json:"channel_info"`
	Y        [][]float64   `json:"y"`
}

func (s *Series) Len() int { return len(s.X) }

// Channel returns the values of the channel with the given
// "component.name" id.
func (s *Series) Channel(id string) ([]float64, bool) {
	for i, c := range s.Channels {
		if c.ID() == id {
			return s.Y[i], true
		}
	}
	return nil, false
}

// Sampler decouples the integration cadence from the reporting cadence.
// Samples are due at t0 + m*step; a sample is taken whenever the
// integrator reaches or passes the next due time.
type Sampler struct {
	t0   float64
	t1   float64
	step float64
	m    int

	nState int
	x      []float64
	cols   [][]float64
}

func NewSampler(t0, t1, step float64, nState, nVar int) *Sampler {
	capacity := int(math.Min((t1-t0)/step, 1<<20)) + 2
	s := &Sampler{
		t0:     t0,
		t1:     t1,
		step:   step,
		nState: nState,
		x:      make([]float64, 0, capacity),
		cols:   make([][]float64, nState+nVar),
	}
	for i := range s.cols {
		s.cols[i] = make([]float64, 0, capacity)
	}
	return s
}

// Next returns the time the next sample is due.
func (s *Sampler) Next() float64 {
	return s.t0 + float64(s.m)*s.step
}

// Due reports whether a sample should be recorded at t.
func (s *Sampler) Due(t float64) bool {
	return t >= s.Next()-TimeTolerance
}

// Record appends a sample at t and moves the due time past t.
func (s *Sampler) Record(t float64, states, variables []float64) {
	s.x = append(s.x, t)
	for i, v := range states {
		s.cols[i] = append(s.cols[i], v)
	}
	for i, v := range variables {
		s.cols[s.nState+i] = append(s.cols[s.nState+i], v)
	}

	m := int(math.Floor((t-s.t0)/s.step)) + 1
	if m <= s.m {
		m = s.m + 1
	}
	for s.t0+float64(m)*s.step <= t+TimeTolerance {
		m++
	}
	s.m = m
}

// HasEnd reports whether the last recorded sample sits on t1.
func (s *Sampler) HasEnd() bool {
	n := len(s.x)
	return n > 0 && math.Abs(s.x[n-1]-s.t1) <= TimeTolerance
}

func (s *Sampler) Len() int { return len(s.x) }

// Series builds the filtered result. Channels of info are matched against
// the recorded columns in state-then-variable order.
func (s *Sampler) Series(info Info, filter *ChannelFilter) *Series {
	channels := info.Channels()
	idx := filter.Indices(channels)

	out := &Series{
		Title:    info.Name,
		XInfo:    info.VOI,
		X:        s.x,
		Channels: make([]ChannelInfo, len(idx)),
		Y:        make([][]float64, len(idx)),
	}
	for j, i := range idx {
		out.Channels[j] = channels[i]
		out.Y[j] = s.cols[i]
	}
	return out
}
