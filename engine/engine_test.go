package engine

import (
	"math"
	"testing"

	"github.com/wajuce/audiograph/kernel"
)

func out(n int) [][]float64 {
	b := make([][]float64, kernel.Channels)
	for ch := range b {
		b[ch] = make([]float64, n)
	}
	return b
}

func TestSuspendedEngineRendersSilence(t *testing.T) {
	e := New(48000, 512)
	buf := out(512)
	buf[0][0] = 1 // pre-fill to make sure Render actually zeroes it
	e.Render(buf, 512)
	for ch := range buf {
		for i, v := range buf[ch] {
			if v != 0 {
				t.Fatalf("suspended engine produced nonzero sample at [%d][%d] = %v", ch, i, v)
			}
		}
	}
	if e.GetCurrentTime() != 0 {
		t.Fatalf("suspended engine advanced the clock to %v", e.GetCurrentTime())
	}
}

func TestOscillatorThroughGainToDestination(t *testing.T) {
	e := New(48000, 512)
	e.Resume()

	osc := e.CreateOscillator()
	e.OscSetType(osc, kernel.WaveSine)
	e.ParamSet(osc, "frequency", 440)
	e.OscStart(osc, 0)

	gain := e.CreateGain()
	e.ParamSet(gain, "gain", 0.5)

	if err := e.Connect(osc, 0, gain, 0); err != nil {
		t.Fatalf("Connect osc->gain: %v", err)
	}
	if err := e.Connect(gain, 0, e.GetDestinationID(), 0); err != nil {
		t.Fatalf("Connect gain->destination: %v", err)
	}

	buf := out(512)
	e.Render(buf, 512)

	peak := 0.0
	for _, v := range buf[0] {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if peak < 0.3 || peak > 0.55 {
		t.Fatalf("peak output = %v, want near 0.5 (unity sine scaled by 0.5 gain)", peak)
	}
}

func TestGainRampScenario(t *testing.T) {
	// Concrete scenario: a gain node ramped linearly from 0 to 1 over
	// one second, rendered as two half-second blocks, should end the
	// second block near the ramp's end value 1.0, for a constant unity
	// input.
	e := New(1000, 1000)
	e.Resume()

	gain := e.CreateGain()
	e.ParamSet(gain, "gain", 0)
	e.ParamLinearRamp(gain, "gain", 1, 1.0)

	osc := e.CreateOscillator()
	e.OscSetType(osc, kernel.WaveSquare)
	e.ParamSet(osc, "frequency", 0.0001) // effectively constant +1 across a short block
	e.OscStart(osc, 0)

	e.Connect(osc, 0, gain, 0)
	e.Connect(gain, 0, e.GetDestinationID(), 0)

	buf := out(1000)
	e.Render(buf, 500) // first half second: ramp 0 -> 0.5
	e.Render(buf, 500) // second half second: ramp 0.5 -> 1.0

	last := buf[0][499]
	if last < 0.85 || last > 1.05 {
		t.Fatalf("sample at end of ramp = %v, want near 1.0", last)
	}
}

func TestFeedbackCycleRendersWithoutDeadlock(t *testing.T) {
	e := New(48000, 256)
	e.Resume()

	a := e.CreateGain()
	e.ParamSet(a, "gain", 1)
	b := e.CreateGain()
	e.ParamSet(b, "gain", 0.5)

	if err := e.Connect(a, 0, b, 0); err != nil {
		t.Fatalf("Connect a->b: %v", err)
	}
	if err := e.Connect(b, 0, a, 0); err != nil {
		t.Fatalf("Connect b->a (cycle): %v", err)
	}
	if err := e.Connect(a, 0, e.GetDestinationID(), 0); err != nil {
		t.Fatalf("Connect a->destination: %v", err)
	}

	buf := out(256)
	// Rendering must complete without hanging even though the graph
	// contains a cycle; the bridge gives it exactly one block of
	// latency instead of requiring the renderer to resolve an order
	// that doesn't exist.
	e.Render(buf, 256)
}

func TestRemoveNodeSeversItsEdges(t *testing.T) {
	e := New(48000, 128)
	e.Resume()

	a := e.CreateGain()
	e.Connect(a, 0, e.GetDestinationID(), 0)

	if err := e.RemoveNode(a); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}

	buf := out(128)
	e.Render(buf, 128) // must not panic on a dangling edge to a removed node
}
