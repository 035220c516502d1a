package engine

import (
	"fmt"
	"io"

	"github.com/wajuce/audiograph/kernel"
	"github.com/wajuce/audiograph/wavfile"
)

func (e *Engine) oscillator(id int32) (*kernel.Oscillator, error) {
	n := e.registry.Get(id)
	if n == nil {
		return nil, fmt.Errorf("engine: no such node %d", id)
	}
	osc, ok := n.Kernel.(*kernel.Oscillator)
	if !ok {
		return nil, fmt.Errorf("engine: node %d is not an oscillator", id)
	}
	return osc, nil
}

// OscSetType selects the oscillator's built-in waveform.
func (e *Engine) OscSetType(id int32, t kernel.Waveform) error {
	osc, err := e.oscillator(id)
	if err != nil {
		return err
	}
	osc.Type = t
	return nil
}

// OscSetPeriodicWave installs a custom wavetable, switching the
// oscillator to kernel.WaveCustom.
func (e *Engine) OscSetPeriodicWave(id int32, table []float64) error {
	osc, err := e.oscillator(id)
	if err != nil {
		return err
	}
	osc.SetPeriodicWave(table)
	osc.Type = kernel.WaveCustom
	return nil
}

// OscStart schedules the oscillator to begin producing sound at when.
func (e *Engine) OscStart(id int32, when float64) error {
	osc, err := e.oscillator(id)
	if err != nil {
		return err
	}
	osc.SetStart(when)
	return nil
}

// OscStop schedules the oscillator to fall silent at when.
func (e *Engine) OscStop(id int32, when float64) error {
	osc, err := e.oscillator(id)
	if err != nil {
		return err
	}
	osc.SetStop(when)
	return nil
}

func (e *Engine) biquad(id int32) (*kernel.BiquadFilter, error) {
	n := e.registry.Get(id)
	if n == nil {
		return nil, fmt.Errorf("engine: no such node %d", id)
	}
	f, ok := n.Kernel.(*kernel.BiquadFilter)
	if !ok {
		return nil, fmt.Errorf("engine: node %d is not a biquad filter", id)
	}
	return f, nil
}

// FilterSetType selects the biquad's response shape.
func (e *Engine) FilterSetType(id int32, t kernel.FilterType) error {
	f, err := e.biquad(id)
	if err != nil {
		return err
	}
	f.Type = t
	return nil
}

func (e *Engine) bufferSource(id int32) (*kernel.BufferSource, error) {
	n := e.registry.Get(id)
	if n == nil {
		return nil, fmt.Errorf("engine: no such node %d", id)
	}
	bs, ok := n.Kernel.(*kernel.BufferSource)
	if !ok {
		return nil, fmt.Errorf("engine: node %d is not a buffer source", id)
	}
	return bs, nil
}

// BufferSourceSetBuffer installs channel-planar sample data. The
// sampleRate argument is not used: playback advances one buffer frame
// per output sample, scaled by PlaybackRate and Detune.
func (e *Engine) BufferSourceSetBuffer(id int32, data [][]float64, sampleRate int) error {
	bs, err := e.bufferSource(id)
	if err != nil {
		return err
	}
	bs.SetBuffer(data, sampleRate)
	return nil
}

// BufferSourceStart schedules playback to begin at when.
func (e *Engine) BufferSourceStart(id int32, when float64) error {
	bs, err := e.bufferSource(id)
	if err != nil {
		return err
	}
	bs.SetStart(when)
	return nil
}

// BufferSourceStop schedules playback to end at when.
func (e *Engine) BufferSourceStop(id int32, when float64) error {
	bs, err := e.bufferSource(id)
	if err != nil {
		return err
	}
	bs.SetStop(when)
	return nil
}

// BufferSourceLoadWav decodes a WAV file from r and installs it as
// id's playback buffer. Resampling is not performed and the file's
// sample rate is not used: one file frame is played per output sample
// at the engine's rate, scaled by PlaybackRate.
func (e *Engine) BufferSourceLoadWav(id int32, r io.ReadSeeker) error {
	data, sr, err := wavfile.Load(r)
	if err != nil {
		return err
	}
	return e.BufferSourceSetBuffer(id, data, sr)
}

// BufferSourceSetLoop toggles whether playback restarts at the buffer
// start once it reaches the end.
func (e *Engine) BufferSourceSetLoop(id int32, loop bool) error {
	bs, err := e.bufferSource(id)
	if err != nil {
		return err
	}
	bs.Looping = loop
	return nil
}

func (e *Engine) analyzer(id int32) (*kernel.Analyzer, error) {
	n := e.registry.Get(id)
	if n == nil {
		return nil, fmt.Errorf("engine: no such node %d", id)
	}
	a, ok := n.Kernel.(*kernel.Analyzer)
	if !ok {
		return nil, fmt.Errorf("engine: node %d is not an analyzer", id)
	}
	return a, nil
}

// AnalyserSetFFTSize resizes the spectral analysis window. size must
// be a power of two.
func (e *Engine) AnalyserSetFFTSize(id int32, size int) error {
	a, err := e.analyzer(id)
	if err != nil {
		return err
	}
	return a.SetFFTSize(size)
}

func (e *Engine) AnalyserGetByteFrequencyData(id int32, dst []byte) error {
	a, err := e.analyzer(id)
	if err != nil {
		return err
	}
	a.GetByteFrequencyData(dst)
	return nil
}

func (e *Engine) AnalyserGetByteTimeDomainData(id int32, dst []byte) error {
	a, err := e.analyzer(id)
	if err != nil {
		return err
	}
	a.GetByteTimeDomainData(dst)
	return nil
}

func (e *Engine) AnalyserGetFloatFrequencyData(id int32, dst []float64) error {
	a, err := e.analyzer(id)
	if err != nil {
		return err
	}
	a.GetFloatFrequencyData(dst)
	return nil
}

func (e *Engine) AnalyserGetFloatTimeDomainData(id int32, dst []float64) error {
	a, err := e.analyzer(id)
	if err != nil {
		return err
	}
	a.GetFloatTimeDomainData(dst)
	return nil
}

// WaveShaperSetCurve installs a custom transfer curve. Oversampling is
// not implemented: curves are applied at the engine's native rate.
func (e *Engine) WaveShaperSetCurve(id int32, curve []float64) error {
	n := e.registry.Get(id)
	if n == nil {
		return fmt.Errorf("engine: no such node %d", id)
	}
	ws, ok := n.Kernel.(*kernel.WaveShaper)
	if !ok {
		return fmt.Errorf("engine: node %d is not a wave shaper", id)
	}
	ws.SetCurve(curve)
	return nil
}
