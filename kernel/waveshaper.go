package kernel

import "math"

// WaveShaper applies a per-sample table lookup on a symmetric curve.
// No oversampling is performed.
type WaveShaper struct {
	curve []float64
}

// NewWaveShaper returns a WaveShaper preloaded with a tanh soft-clip
// curve of length 1024.
func NewWaveShaper() *WaveShaper {
	const l = 1024
	curve := make([]float64, l)
	for i := range curve {
		curve[i] = math.Tanh(float64(i)/512.0 - 1.0)
	}
	return &WaveShaper{curve: curve}
}

func (w *WaveShaper) Prepare(_ Context) {}

// SetCurve installs a new lookup curve. len(curve) becomes L in the
// index formula below.
func (w *WaveShaper) SetCurve(curve []float64) {
	w.curve = append([]float64(nil), curve...)
}

func (w *WaveShaper) Process(in, out [][]float64, n int, _ float64) {
	l := len(w.curve)
	if l == 0 {
		for ch := 0; ch < Channels; ch++ {
			copy(out[ch][:n], in[ch][:n])
		}
		return
	}
	for ch := 0; ch < Channels; ch++ {
		src, dst := in[ch], out[ch]
		for i := 0; i < n; i++ {
			idx := int((src[i] + 1) * float64(l-1) / 2)
			idx = clampInt(idx, 0, l-1)
			dst[i] = w.curve[idx]
		}
	}
}
