package kernel

import (
	"math"

	"github.com/wajuce/audiograph/dsp/filter/biquad"
)

// FilterType selects a BiquadFilter's response.
type FilterType int

const (
	FilterLowpass FilterType = iota
	FilterHighpass
	FilterBandpass
)

// BiquadFilter wraps one biquad.Section per channel, recomputing
// coefficients at block boundaries from smoothed frequency/Q targets
// to avoid zipper noise.
type BiquadFilter struct {
	Frequency float64
	Q         float64
	Type      FilterType

	sampleRate float64
	smoothF    float64
	smoothQ    float64
	sections   [Channels]*biquad.Section
}

func NewBiquadFilter() *BiquadFilter {
	f := &BiquadFilter{Frequency: 350, Q: 1}
	for ch := range f.sections {
		f.sections[ch] = biquad.NewSection(biquad.Coefficients{})
	}
	return f
}

func (f *BiquadFilter) Prepare(ctx Context) {
	f.sampleRate = ctx.SampleRate
	f.smoothF = clamp(f.Frequency, 10, ctx.SampleRate*0.45)
	f.smoothQ = math.Max(1e-4, f.Q)
	f.updateCoefficients()
	for _, s := range f.sections {
		s.Reset()
	}
}

func (f *BiquadFilter) Process(in, out [][]float64, n int, _ float64) {
	const smoothing = 0.2
	targetF := clamp(f.Frequency, 10, f.sampleRate*0.45)
	targetQ := math.Max(1e-4, f.Q)

	f.smoothF += (targetF - f.smoothF) * smoothing
	f.smoothQ += (targetQ - f.smoothQ) * smoothing
	f.updateCoefficients()

	for ch := 0; ch < Channels; ch++ {
		f.sections[ch].ProcessBlockTo(out[ch][:n], in[ch][:n])
	}
}

func (f *BiquadFilter) updateCoefficients() {
	c := lowpassCoefficients(f.sampleRate, f.smoothF, f.smoothQ)
	switch f.Type {
	case FilterHighpass:
		c = highpassCoefficients(f.sampleRate, f.smoothF, f.smoothQ)
	case FilterBandpass:
		c = bandpassCoefficients(f.sampleRate, f.smoothF, f.smoothQ)
	}
	for _, s := range f.sections {
		state := s.State()
		s.Coefficients = c
		s.SetState(state)
	}
}

// RBJ-style biquad cookbook formulas for lowpass, highpass, and the
// constant 0 dB peak-gain bandpass form.
func lowpassCoefficients(sr, freq, q float64) biquad.Coefficients {
	w0, alpha := cookbookIntermediate(sr, freq, q)
	cosw0 := math.Cos(w0)
	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func highpassCoefficients(sr, freq, q float64) biquad.Coefficients {
	w0, alpha := cookbookIntermediate(sr, freq, q)
	cosw0 := math.Cos(w0)
	b0 := (1 + cosw0) / 2
	b1 := -(1 + cosw0)
	b2 := (1 + cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func bandpassCoefficients(sr, freq, q float64) biquad.Coefficients {
	w0, alpha := cookbookIntermediate(sr, freq, q)
	cosw0 := math.Cos(w0)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func cookbookIntermediate(sr, freq, q float64) (w0, alpha float64) {
	w0 = 2 * math.Pi * freq / sr
	alpha = math.Sin(w0) / (2 * q)
	return
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	return biquad.Coefficients{
		B0: b0 / a0, B1: b1 / a0, B2: b2 / a0,
		A1: a1 / a0, A2: a2 / a0,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
