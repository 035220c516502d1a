package kernel

import "math"

// Waveform selects an Oscillator's output shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	WaveCustom
)

// Oscillator is a phase-accumulating generator. It outputs zero
// outside [start, stop) and preserves phase across blocks.
type Oscillator struct {
	Frequency float64
	Detune    float64
	Type      Waveform

	start float64
	stop  float64
	phase float64

	sampleRate float64

	wavetable []float64
}

// NewOscillator returns an Oscillator with Web-Audio-style defaults:
// silent until Start is called.
func NewOscillator() *Oscillator {
	return &Oscillator{
		Frequency: 440,
		Type:      WaveSawtooth,
		start:     -1,
		stop:      1e15,
	}
}

func (o *Oscillator) Prepare(ctx Context) {
	o.sampleRate = ctx.SampleRate
	o.phase = 0
}

func (o *Oscillator) SetStart(t float64) { o.start = t; o.phase = 0 }
func (o *Oscillator) SetStop(t float64)  { o.stop = t }

// SetPeriodicWave installs a custom wavetable used when Type ==
// WaveCustom. table must be non-empty for WaveCustom to produce sound.
func (o *Oscillator) SetPeriodicWave(table []float64) {
	o.wavetable = append(o.wavetable[:0], table...)
}

func (o *Oscillator) Process(_, out [][]float64, n int, engineTime float64) {
	actualFreq := o.Frequency * math.Pow(2, o.Detune/1200)
	phaseInc := actualFreq / o.sampleRate

	table := o.wavetable
	useTable := o.Type == WaveCustom && len(table) > 0

	for i := 0; i < n; i++ {
		t := engineTime + float64(i)/o.sampleRate

		if o.start < 0 || t < o.start || t >= o.stop {
			for ch := 0; ch < Channels; ch++ {
				out[ch][i] = 0
			}
			continue
		}

		var sample float64
		switch o.Type {
		case WaveSine:
			sample = math.Sin(o.phase * 2 * math.Pi)
		case WaveSquare:
			if o.phase < 0.5 {
				sample = 1
			} else {
				sample = -1
			}
		case WaveSawtooth:
			sample = 2*o.phase - 1
		case WaveTriangle:
			sample = 4*math.Abs(o.phase-0.5) - 1
		case WaveCustom:
			if useTable {
				l := len(table)
				idx := o.phase * float64(l)
				idx0 := int(idx) % l
				idx1 := (idx0 + 1) % l
				frac := idx - math.Floor(idx)
				sample = table[idx0] + frac*(table[idx1]-table[idx0])
			}
		}

		for ch := 0; ch < Channels; ch++ {
			out[ch][i] = sample
		}

		o.phase += phaseInc
		if o.phase >= 1 {
			o.phase -= math.Floor(o.phase)
		}
	}
}
