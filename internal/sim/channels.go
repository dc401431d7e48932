package sim

type channelKey struct {
	component string
	name      string
}

// ChannelFilter decides which channels are reported. A non-empty include
// list takes precedence over the exclude list; with neither, every
// channel is kept.
type ChannelFilter struct {
	include map[channelKey]bool
	exclude map[channelKey]bool
}

func NewChannelFilter(cfg ChannelConfig) (*ChannelFilter, error) {
	f := &ChannelFilter{}
	if len(cfg.ParameterIncludes) > 0 {
		keys, err := channelKeys(cfg.ParameterIncludes)
		if err != nil {
			return nil, err
		}
		f.include = keys
		return f, nil
	}
	if len(cfg.ParameterExcludes) > 0 {
		keys, err := channelKeys(cfg.ParameterExcludes)
		if err != nil {
			return nil, err
		}
		f.exclude = keys
	}
	return f, nil
}

func channelKeys(ids []string) (map[channelKey]bool, error) {
	keys := make(map[channelKey]bool, len(ids))
	for _, id := range ids {
		component, name, err := splitChannelID(id)
		if err != nil {
			return nil, err
		}
		keys[channelKey{component, name}] = true
	}
	return keys, nil
}

func (f *ChannelFilter) Keep(c ChannelInfo) bool {
	k := channelKey{c.Component, c.Name}
	if f.include != nil {
		return f.include[k]
	}
	if f.exclude != nil {
		return !f.exclude[k]
	}
	return true
}

// Indices returns the positions in channels that the filter keeps.
func (f *ChannelFilter) Indices(channels []ChannelInfo) []int {
	idx := make([]int, 0, len(channels))
	for i, c := range channels {
		if f.Keep(c) {
			idx = append(idx, i)
		}
	}
	return idx
}
