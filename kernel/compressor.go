package kernel

import "github.com/wajuce/audiograph/dsp/effects/dynamics"

// Compressor is a feed-forward dynamics node, running one
// dynamics.Compressor per channel in place.
type Compressor struct {
	Threshold float64
	Ratio     float64
	Knee      float64
	Attack    float64
	Release   float64

	comps [Channels]*dynamics.Compressor
}

func NewCompressor() *Compressor {
	return &Compressor{
		Threshold: -20,
		Ratio:     4,
		Attack:    10,
		Release:   100,
	}
}

func (c *Compressor) Prepare(ctx Context) {
	for ch := range c.comps {
		comp, err := dynamics.NewCompressor(ctx.SampleRate)
		if err != nil {
			// A non-positive or non-finite SampleRate leaves this channel
			// without a compressor; Process then passes it through.
			continue
		}
		c.comps[ch] = comp
	}
	c.syncParams()
}

func (c *Compressor) syncParams() {
	for _, comp := range c.comps {
		if comp == nil {
			continue
		}
		_ = comp.SetThreshold(c.Threshold)
		_ = comp.SetRatio(c.Ratio)
		_ = comp.SetKnee(c.Knee)
		_ = comp.SetAttack(c.Attack)
		_ = comp.SetRelease(c.Release)
	}
}

func (c *Compressor) Process(in, out [][]float64, n int, _ float64) {
	c.syncParams()
	for ch := 0; ch < Channels; ch++ {
		copy(out[ch][:n], in[ch][:n])
		if comp := c.comps[ch]; comp != nil {
			comp.ProcessInPlace(out[ch][:n])
		}
	}
}
