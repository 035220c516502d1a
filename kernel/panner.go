package kernel

import "math"

// StereoPanner is an equal-power panner. Pan is linearly interpolated
// sample-by-sample from the previous block's final value to the
// current target to avoid zipper clicks at block boundaries.
type StereoPanner struct {
	Pan float64

	lastPan float64
}

func NewStereoPanner() *StereoPanner {
	return &StereoPanner{}
}

func (p *StereoPanner) Prepare(_ Context) {
	p.lastPan = clamp(p.Pan, -1, 1)
}

func (p *StereoPanner) Process(in, out [][]float64, n int, _ float64) {
	if Channels < 2 || n <= 0 {
		return
	}
	target := clamp(p.Pan, -1, 1)
	step := (target - p.lastPan) / float64(n)
	current := p.lastPan

	left, right := in[0], in[1]
	outL, outR := out[0], out[1]
	for i := 0; i < n; i++ {
		leftGain := math.Cos((current + 1) * math.Pi / 4)
		rightGain := math.Sin((current + 1) * math.Pi / 4)
		outL[i] = left[i] * leftGain
		outR[i] = right[i] * rightGain
		current += step
	}
	p.lastPan = target
}
