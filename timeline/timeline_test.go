package timeline

import (
	"math"
	"testing"
)

const sr = 48000.0

func almostEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestLinearRampShape(t *testing.T) {
	tl := New(1.0)
	tl.LinearRampTo(0.0, 1.0)

	out := make([]float64, 48000)
	tl.ProcessBlock(0, sr, 48000, out)

	if !almostEqual(out[0], 1.0, 1e-3) {
		t.Fatalf("out[0] = %v, want ~1.0", out[0])
	}
	if !almostEqual(out[24000], 0.5, 1e-3) {
		t.Fatalf("out[24000] = %v, want ~0.5", out[24000])
	}
}

func TestExponentialRampShape(t *testing.T) {
	tl := New(1.0)
	tl.ExpRampTo(8.0, 1.0)

	out := make([]float64, 48001)
	tl.ProcessBlock(0, sr, 48001, out)

	t0, v0 := 0.0, 1.0
	tEnd, vEnd := 1.0, 8.0
	for _, i := range []int{0, 12000, 24000, 48000} {
		ti := float64(i) / sr
		tau := (ti - t0) / (tEnd - t0)
		want := v0 * math.Pow(vEnd/v0, tau)
		if !almostEqual(out[i], want, 1e-6) {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestCancelAndHoldMidRamp(t *testing.T) {
	tl := New(0.0)
	tl.SetValueAt(0.0, 0.0)
	tl.LinearRampTo(1.0, 1.0)

	// Advance exactly through the sample landing on t=0.5 so LastValue
	// reflects the ramp's true value there before cancellation.
	pre := make([]float64, int(0.5*sr)+1)
	tl.ProcessBlock(0, sr, len(pre), pre)

	tl.CancelAndHold(0.5)

	out := make([]float64, int(0.5*sr))
	tl.ProcessBlock(0.5, sr, len(out), out)

	for i, v := range out {
		if !almostEqual(v, 0.5, 1e-6) {
			t.Fatalf("out[%d] = %v, want 0.5 after cancel-and-hold", i, v)
		}
	}
}

func TestBlockEvaluationMatchesSampleBySample(t *testing.T) {
	build := func() *Timeline {
		tl := New(0.0)
		tl.SetValueAt(0.0, 0.0)
		tl.LinearRampTo(1.0, 0.5)
		tl.SetTargetAt(0.2, 0.5, 0.1)
		return tl
	}

	n := 2000
	block := build()
	blockOut := make([]float64, n)
	block.ProcessBlock(0, sr, n, blockOut)

	sampleWise := build()
	sampleOut := make([]float64, n)
	for i := 0; i < n; i++ {
		sampleOut[i] = sampleWise.ProcessBlock(float64(i)/sr, sr, 1, nil)
	}

	for i := range blockOut {
		if !almostEqual(blockOut[i], sampleOut[i], 1e-9) {
			t.Fatalf("sample %d: block=%v sample-by-sample=%v", i, blockOut[i], sampleOut[i])
		}
	}
}

func TestCancelScheduledDropsFutureEvents(t *testing.T) {
	tl := New(3.0)
	tl.LinearRampTo(10.0, 1.0)
	tl.CancelScheduled(0.5)

	out := make([]float64, 100)
	v := tl.ProcessBlock(0.9, sr, 100, out)
	if !almostEqual(v, 3.0, 1e-9) {
		t.Fatalf("v = %v, want 3.0 (ramp event should have been cancelled)", v)
	}
}
