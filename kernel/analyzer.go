package kernel

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// Analyzer maintains a FIFO of the last FFTSize samples of channel 0
// and, whenever the FIFO fills, produces frequency-domain magnitudes
// via a real forward FFT. Readout methods are safe from any thread:
// they read the last completed snapshot.
type Analyzer struct {
	fftSize   int
	plan      *algofft.Plan64
	fifo      []float64
	fifoIndex int

	freqData []float64 // magnitude spectrum, len fftSize/2
}

// NewAnalyzer returns an Analyzer with a default FFT size of 2048.
func NewAnalyzer() (*Analyzer, error) {
	a := &Analyzer{}
	if err := a.SetFFTSize(2048); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Analyzer) Prepare(_ Context) {}

// SetFFTSize installs a new analysis window size. Only powers of two
// are accepted; non-power-of-two sizes are rejected rather than
// silently clamped.
func (a *Analyzer) SetFFTSize(size int) error {
	if size <= 0 || size&(size-1) != 0 {
		return fmt.Errorf("kernel: analyzer fft size must be a power of two, got %d", size)
	}
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return fmt.Errorf("kernel: failed to create fft plan: %w", err)
	}
	a.fftSize = size
	a.plan = plan
	a.fifo = make([]float64, size)
	a.freqData = make([]float64, size/2)
	a.fifoIndex = 0
	return nil
}

func (a *Analyzer) Process(in, out [][]float64, n int, _ float64) {
	data := in[0]
	for i := 0; i < n; i++ {
		a.fifo[a.fifoIndex] = data[i]
		a.fifoIndex++
		if a.fifoIndex >= a.fftSize {
			a.runFFT()
			a.fifoIndex = 0
		}
	}
	// Analyzer is a tap: pass input through unchanged.
	for ch := 0; ch < Channels; ch++ {
		copy(out[ch][:n], in[ch][:n])
	}
}

func (a *Analyzer) runFFT() {
	td := make([]complex128, a.fftSize)
	for i, v := range a.fifo {
		td[i] = complex(v, 0)
	}
	fd := make([]complex128, a.fftSize)
	if err := a.plan.Forward(fd, td); err != nil {
		return
	}
	for i := range a.freqData {
		a.freqData[i] = cmplxAbs(fd[i])
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// GetByteFrequencyData writes min(len(dst), fftSize/2) bytes mapping
// dB + 100 into [0, 255].
func (a *Analyzer) GetByteFrequencyData(dst []byte) {
	count := len(dst)
	if count > len(a.freqData) {
		count = len(a.freqData)
	}
	for i := 0; i < count; i++ {
		db := gainToDecibels(a.freqData[i])
		v := int((db + 100) * 2.55)
		dst[i] = byte(clampInt(v, 0, 255))
	}
}

// GetByteTimeDomainData writes min(len(dst), fftSize) bytes mapping
// [-1, 1] into [0, 255].
func (a *Analyzer) GetByteTimeDomainData(dst []byte) {
	count := len(dst)
	if count > len(a.fifo) {
		count = len(a.fifo)
	}
	for i := 0; i < count; i++ {
		v := int((a.fifo[i] + 1) * 127.5)
		dst[i] = byte(clampInt(v, 0, 255))
	}
}

// GetFloatFrequencyData writes min(len(dst), fftSize/2) raw magnitudes.
func (a *Analyzer) GetFloatFrequencyData(dst []float64) {
	copy(dst, a.freqData)
}

// GetFloatTimeDomainData writes min(len(dst), fftSize) raw samples.
func (a *Analyzer) GetFloatTimeDomainData(dst []float64) {
	copy(dst, a.fifo)
}

func gainToDecibels(gain float64) float64 {
	if gain <= 0 {
		return -100
	}
	return 20 * math.Log10(gain)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
