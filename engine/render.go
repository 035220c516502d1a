package engine

import (
	"math"

	"github.com/wajuce/audiograph/kernel"
)

// Render produces exactly n frames of stereo output into out (out must
// have kernel.Channels rows, each of length >= n). While suspended or
// closed, Render fills out with silence and leaves the engine clock
// unchanged.
//
// Per block: snapshot the engine time, advance every parameter
// timeline, run every node in topological order summing its inputs
// from upstream outputs, copy the destination node's accumulated
// input into out, then advance the clock by n/sampleRate.
func (e *Engine) Render(out [][]float64, n int) {
	if State(e.state.Load()) != StateRunning {
		for ch := range out {
			zero(out[ch][:n])
		}
		return
	}

	startTime := e.GetCurrentTime()

	e.runAutomation(startTime, e.sampleRate, n)

	order := e.graph.Order()
	for _, id := range order {
		e.renderNode(id, startTime, n)
	}

	dest := e.inputs[DestinationID]
	for ch := range out {
		if ch < len(dest) {
			copy(out[ch][:n], dest[ch][:n])
		} else {
			zero(out[ch][:n])
		}
	}

	e.currentTime.Store(math.Float64bits(startTime + float64(n)/e.sampleRate))
}

func (e *Engine) renderNode(id int32, engineTime float64, n int) {
	rec := e.registry.Get(id)
	if rec == nil {
		return
	}

	in, out := e.inputs[id], e.outputs[id]
	if in == nil {
		e.allocBuffers(id)
		in, out = e.inputs[id], e.outputs[id]
	}
	for ch := range in {
		zero(in[ch][:n])
	}

	for ch := 0; ch < kernel.Channels; ch++ {
		for _, src := range e.graph.InputsTo(id, ch) {
			srcOut := e.outputs[src.Node]
			if srcOut == nil || src.Channel >= len(srcOut) {
				continue
			}
			sum(in[ch][:n], srcOut[src.Channel][:n])
		}
	}

	rec.Kernel.Process(in, out, n, engineTime)
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

func sum(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}
