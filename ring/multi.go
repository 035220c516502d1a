package ring

// Multi wraps one independent Ring per channel. Channels advance
// independently: nothing here couples their read/write positions.
type Multi struct {
	channels []*Ring
}

// NewMulti returns a Multi with the given channel count, each backed by
// a Ring of capacityPerChannel slots.
func NewMulti(channels, capacityPerChannel int) *Multi {
	m := &Multi{channels: make([]*Ring, channels)}
	for i := range m.channels {
		m.channels[i] = New(capacityPerChannel)
	}
	return m
}

// Channel returns the ring for the given channel index, or nil if out
// of range.
func (m *Multi) Channel(ch int) *Ring {
	if ch < 0 || ch >= len(m.channels) {
		return nil
	}
	return m.channels[ch]
}

// NumChannels returns the channel count.
func (m *Multi) NumChannels() int { return len(m.channels) }

// Clear resets every channel.
func (m *Multi) Clear() {
	for _, c := range m.channels {
		c.Clear()
	}
}
