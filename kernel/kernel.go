// Package kernel implements the per-node-kind DSP processing contracts
// of the audio graph: oscillator, gain, biquad filter, stereo panner,
// delay line, buffer source, spectrum analyzer, compressor, waveshaper,
// and the feedback bridge pair used to realize cycles.
package kernel

// Channels is the fixed channel count the render graph operates on.
// The node kinds specified here (panner, stereo delay, etc.) are
// defined against a stereo signal path; wider fan-out belongs to a
// channel splitter/merger, which is out of scope.
const Channels = 2

// Context carries engine-wide configuration a kernel needs at
// creation.
type Context struct {
	SampleRate   float64
	MaxBlockSize int
}

// Kernel is the processing contract every node kind implements. Buffers
// are channel-planar: len(buf) == Channels, and each buf[ch] has at
// least n valid samples. engineTime is the timestamp of sample 0 of
// this block.
type Kernel interface {
	// Prepare (re)sizes any internal storage for the given context.
	// The engine calls it once, at node creation; it is not called
	// again for blocks longer than ctx.MaxBlockSize.
	Prepare(ctx Context)

	// Process reads in (ignored by source kernels, which may be passed
	// nil) and writes n samples of output into out.
	Process(in, out [][]float64, n int, engineTime float64)
}

// Automated is implemented by kernels that consume a per-sample
// automation array for one of their parameters (Gain, Delay) instead
// of a single scalar for the block.
type Automated interface {
	// SetAutomatedParam installs the per-sample values computed by the
	// renderer for name, and marks the kernel as automated for this
	// block. values is owned by the kernel-side storage the renderer
	// wrote into; it is not retained past the block.
	SetAutomatedParam(name string, values []float64)
	// ClearAutomatedParam marks name as not automated for this block,
	// so the kernel falls back to its scalar value.
	ClearAutomatedParam(name string)
}

// Gated is implemented by kernels with start/stop scheduling windows.
type Gated interface {
	SetStart(t float64)
	SetStop(t float64)
}
