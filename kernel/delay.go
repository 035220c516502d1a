package kernel

// Delay is a fractional delay line per channel with linear
// interpolation and an internal feedback path. Output is 100% wet;
// dry/wet mixing happens via the graph's own connections.
//
// Capacity is sized from the actual configured sample rate at
// Prepare time, not a hard-coded rate.
type Delay struct {
	DelayTime float64 // seconds
	Feedback  float64 // clamped to [0, 0.9995] at use

	MaxDelay float64 // seconds; capacity headroom

	sampleRate float64
	lines      [Channels][]float64
	writePos   int

	automated       bool
	automatedDelays []float64
}

func NewDelay(maxDelay float64) *Delay {
	if maxDelay <= 0 {
		maxDelay = 2.0
	}
	return &Delay{DelayTime: 0.3, MaxDelay: maxDelay}
}

func (d *Delay) Prepare(ctx Context) {
	d.sampleRate = ctx.SampleRate
	size := int(ctx.SampleRate*d.MaxDelay) + ctx.MaxBlockSize + 1
	for ch := range d.lines {
		d.lines[ch] = make([]float64, size)
	}
	d.writePos = 0
	if len(d.automatedDelays) < ctx.MaxBlockSize {
		d.automatedDelays = make([]float64, ctx.MaxBlockSize)
	}
}

func (d *Delay) SetAutomatedParam(name string, values []float64) {
	if name != "delayTime" {
		return
	}
	d.automated = true
	copy(d.automatedDelays, values)
}

func (d *Delay) ClearAutomatedParam(name string) {
	if name == "delayTime" {
		d.automated = false
	}
}

func (d *Delay) Process(in, out [][]float64, n int, _ float64) {
	bufLen := len(d.lines[0])
	if bufLen == 0 {
		return
	}
	feedback := clamp(d.Feedback, 0, 0.9995)

	for ch := 0; ch < Channels; ch++ {
		line := d.lines[ch]
		src := in[ch]
		dst := out[ch]
		wPos := d.writePos

		for i := 0; i < n; i++ {
			delaySeconds := d.DelayTime
			if d.automated {
				delaySeconds = d.automatedDelays[i]
			}
			delaySamples := delaySeconds * d.sampleRate

			rp := float64(wPos) - delaySamples
			for rp < 0 {
				rp += float64(bufLen)
			}

			i1 := int(rp) % bufLen
			i2 := (i1 + 1) % bufLen
			frac := rp - float64(int(rp))

			outSample := line[i1] + frac*(line[i2]-line[i1])

			line[wPos] = src[i] + outSample*feedback
			dst[i] = outSample

			wPos = (wPos + 1) % bufLen
		}
	}
	d.writePos = (d.writePos + n) % bufLen
}
