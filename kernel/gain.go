package kernel

// Gain multiplies its input by a scalar, or by a per-sample array when
// the current block is automated.
type Gain struct {
	Value float64

	automated      bool
	automatedGains []float64
}

func NewGain() *Gain {
	return &Gain{Value: 1}
}

func (g *Gain) Prepare(ctx Context) {
	if len(g.automatedGains) < ctx.MaxBlockSize {
		g.automatedGains = make([]float64, ctx.MaxBlockSize)
	}
}

func (g *Gain) SetAutomatedParam(name string, values []float64) {
	if name != "gain" {
		return
	}
	g.automated = true
	copy(g.automatedGains, values)
}

func (g *Gain) ClearAutomatedParam(name string) {
	if name == "gain" {
		g.automated = false
	}
}

func (g *Gain) Process(in, out [][]float64, n int, _ float64) {
	if g.automated {
		for i := 0; i < n; i++ {
			gv := g.automatedGains[i]
			for ch := 0; ch < Channels; ch++ {
				out[ch][i] = in[ch][i] * gv
			}
		}
		return
	}
	gv := g.Value
	for ch := 0; ch < Channels; ch++ {
		src, dst := in[ch], out[ch]
		for i := 0; i < n; i++ {
			dst[i] = src[i] * gv
		}
	}
}
