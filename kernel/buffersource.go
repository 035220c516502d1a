package kernel

import "math"

// BufferSource plays a stored PCM buffer with linear interpolation and
// an exponential decay envelope, gated by a start/stop window.
type BufferSource struct {
	PlaybackRate float64
	Detune       float64
	Decay        float64
	Looping      bool

	sampleRate float64

	data     []float64 // channel-interleaved-by-block: data[ch*frames+i]
	frames   int
	channels int

	running  bool
	readPos  float64
	envelope float64
	start    float64
	stop     float64
}

func NewBufferSource() *BufferSource {
	return &BufferSource{
		PlaybackRate: 1,
		Decay:        0.5,
		start:        -1,
		stop:         1e15,
		envelope:     1,
	}
}

func (b *BufferSource) Prepare(ctx Context) {
	b.sampleRate = ctx.SampleRate
}

// SetBuffer installs the PCM data to play. data is channel-planar:
// one []float64 of length frames per channel.
func (b *BufferSource) SetBuffer(data [][]float64, sampleRate int) {
	b.channels = len(data)
	if b.channels == 0 {
		b.frames = 0
		b.data = nil
		return
	}
	b.frames = len(data[0])
	b.data = make([]float64, b.frames*b.channels)
	for ch, chData := range data {
		copy(b.data[ch*b.frames:(ch+1)*b.frames], chData)
	}
	b.readPos = 0
}

func (b *BufferSource) SetStart(t float64) {
	b.start = t
	b.readPos = 0
	b.envelope = 1
	b.running = true
}

func (b *BufferSource) SetStop(t float64) { b.stop = t }

func (b *BufferSource) Process(_, out [][]float64, n int, engineTime float64) {
	if !b.running || len(b.data) == 0 {
		for ch := 0; ch < Channels; ch++ {
			zero(out[ch][:n])
		}
		return
	}

	rate := math.Pow(2, b.Detune/1200) * b.PlaybackRate
	decayCoeff := math.Exp(-1 / (b.Decay * b.sampleRate))

	for i := 0; i < n; i++ {
		t := engineTime + float64(i)/b.sampleRate

		if b.start >= 0 && t < b.start {
			for ch := 0; ch < Channels; ch++ {
				out[ch][i] = 0
			}
			continue
		}
		if t >= b.stop {
			b.running = false
			for ; i < n; i++ {
				for ch := 0; ch < Channels; ch++ {
					out[ch][i] = 0
				}
			}
			return
		}

		if b.readPos >= float64(b.frames-1) {
			if b.Looping {
				b.readPos = 0
			} else {
				for ; i < n; i++ {
					for ch := 0; ch < Channels; ch++ {
						out[ch][i] = 0
					}
				}
				b.running = false
				return
			}
		}

		idx0 := int(b.readPos)
		frac := b.readPos - float64(idx0)
		env := b.envelope

		if b.channels == 1 {
			sample := b.linearAt(0, idx0, frac) * env
			for ch := 0; ch < Channels; ch++ {
				out[ch][i] = sample
			}
		} else {
			numCh := min(Channels, b.channels)
			for ch := 0; ch < numCh; ch++ {
				out[ch][i] = b.linearAt(ch*b.frames, idx0, frac) * env
			}
			for ch := numCh; ch < Channels; ch++ {
				out[ch][i] = 0
			}
		}

		b.envelope *= decayCoeff
		b.readPos += rate
	}
}

// linearAt reads the two samples straddling idx0 within the channel
// starting at base and linearly interpolates between them at
// fractional offset frac, clamping the trailing tap to the channel's
// last frame at the buffer's edge.
func (b *BufferSource) linearAt(base, idx0 int, frac float64) float64 {
	idx1 := idx0 + 1
	if last := b.frames - 1; idx1 > last {
		idx1 = last
	}
	s0 := b.data[base+idx0]
	s1 := b.data[base+idx1]
	return s0 + frac*(s1-s0)
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
