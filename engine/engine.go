// Package engine assembles the node registry, the graph, and the
// per-block renderer into the single external entry point: a graph
// engine that owns node lifecycle, parameter automation, and audio
// rendering.
package engine

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/wajuce/audiograph/dsp/buffer"
	"github.com/wajuce/audiograph/graph"
	"github.com/wajuce/audiograph/kernel"
	"github.com/wajuce/audiograph/node"
)

// State mirrors the Web Audio-style context lifecycle.
type State int32

const (
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DestinationID is the reserved node ID of the graph's single sink.
const DestinationID int32 = 0

// Engine owns a node graph and renders it one block at a time.
type Engine struct {
	sampleRate   float64
	maxBlockSize int

	state       atomic.Int32
	currentTime atomic.Uint64 // float64 bits, elapsed engine time in seconds

	registry *node.Registry
	graph    *graph.Graph

	mu        sync.Mutex // guards buffers map growth, taken by both control and render calls that touch it
	bufPool   *buffer.Pool
	inputBufs map[int32][]*buffer.Buffer
	outBufs   map[int32][]*buffer.Buffer
	inputs    map[int32][][]float64
	outputs   map[int32][][]float64
	scratch   []float64 // reusable per-sample scratch for automation values that are discarded

	log *logrus.Entry
}

// New constructs an Engine with a destination node already present at
// ID 0, in the suspended state.
func New(sampleRate float64, maxBlockSize int) *Engine {
	e := &Engine{
		sampleRate:   sampleRate,
		maxBlockSize: maxBlockSize,
		registry:     node.NewRegistry(),
		bufPool:      buffer.NewPool(),
		inputBufs:    make(map[int32][]*buffer.Buffer),
		outBufs:      make(map[int32][]*buffer.Buffer),
		inputs:       make(map[int32][][]float64),
		outputs:      make(map[int32][][]float64),
		scratch:      make([]float64, maxBlockSize),
		log:          logrus.WithFields(logrus.Fields{"component": "engine"}),
	}
	e.graph = graph.New(e.registry, maxBlockSize)
	e.graph.SetOnNodeRemoved(e.freeBuffers)
	e.state.Store(int32(StateSuspended))

	dest := kernel.NewGain()
	dest.Value = 1
	destNode := node.NewNode(DestinationID, node.Destination, dest)
	e.registry.Add(destNode)
	e.allocBuffers(DestinationID)
	dest.Prepare(kernel.Context{SampleRate: sampleRate, MaxBlockSize: maxBlockSize})

	e.log.WithFields(logrus.Fields{"sampleRate": sampleRate, "blockSize": maxBlockSize}).Info("engine created")
	return e
}

// allocBuffers draws a node's per-channel input/output scratch buffers
// from the pool rather than allocating fresh slices, since nodes (in
// particular the bridge pairs the graph splices in and tears down to
// break cycles) can churn frequently on the control thread.
func (e *Engine) allocBuffers(id int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inBufs := make([]*buffer.Buffer, kernel.Channels)
	outBufs := make([]*buffer.Buffer, kernel.Channels)
	in := make([][]float64, kernel.Channels)
	out := make([][]float64, kernel.Channels)
	for ch := range in {
		inBufs[ch] = e.bufPool.Get(e.maxBlockSize)
		outBufs[ch] = e.bufPool.Get(e.maxBlockSize)
		in[ch] = inBufs[ch].Samples()
		out[ch] = outBufs[ch].Samples()
	}
	e.inputBufs[id] = inBufs
	e.outBufs[id] = outBufs
	e.inputs[id] = in
	e.outputs[id] = out
}

func (e *Engine) freeBuffers(id int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range e.inputBufs[id] {
		e.bufPool.Put(b)
	}
	for _, b := range e.outBufs[id] {
		e.bufPool.Put(b)
	}
	delete(e.inputBufs, id)
	delete(e.outBufs, id)
	delete(e.inputs, id)
	delete(e.outputs, id)
}

// Resume transitions the engine to running.
func (e *Engine) Resume() {
	e.state.Store(int32(StateRunning))
	e.log.Debug("resumed")
}

// Suspend transitions the engine to suspended; Render then produces
// silence without advancing the clock.
func (e *Engine) Suspend() {
	e.state.Store(int32(StateSuspended))
	e.log.Debug("suspended")
}

// Close permanently stops the engine.
func (e *Engine) Close() {
	e.state.Store(int32(StateClosed))
	e.log.Debug("closed")
}

// GetState reports the engine's current lifecycle state.
func (e *Engine) GetState() State { return State(e.state.Load()) }

// GetCurrentTime reports elapsed engine time in seconds.
func (e *Engine) GetCurrentTime() float64 {
	return math.Float64frombits(e.currentTime.Load())
}

// GetSampleRate reports the configured sample rate in Hz.
func (e *Engine) GetSampleRate() float64 { return e.sampleRate }

// GetDestinationID returns the reserved destination node ID.
func (e *Engine) GetDestinationID() int32 { return DestinationID }

func (e *Engine) prepareAndAdd(id int32, kind node.Kind, k kernel.Kernel) int32 {
	k.Prepare(kernel.Context{SampleRate: e.sampleRate, MaxBlockSize: e.maxBlockSize})
	n := node.NewNode(id, kind, k)
	seedTimelines(n)
	e.registry.Add(n)
	e.allocBuffers(id)
	e.graph.InvalidateOrder()
	e.log.WithFields(logrus.Fields{"id": id, "kind": kind.String()}).Debug("node created")
	return id
}

func (e *Engine) CreateGain() int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.Gain, kernel.NewGain())
}

func (e *Engine) CreateOscillator() int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.Oscillator, kernel.NewOscillator())
}

func (e *Engine) CreateBiquadFilter() int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.BiquadFilter, kernel.NewBiquadFilter())
}

func (e *Engine) CreateCompressor() int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.Compressor, kernel.NewCompressor())
}

// CreateDelay allocates a delay node with a ring sized for at most
// maxDelay seconds of history (2 seconds if maxDelay <= 0).
func (e *Engine) CreateDelay(maxDelay float64) int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.Delay, kernel.NewDelay(maxDelay))
}

func (e *Engine) CreateStereoPanner() int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.StereoPanner, kernel.NewStereoPanner())
}

func (e *Engine) CreateBufferSource() int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.BufferSource, kernel.NewBufferSource())
}

// CreateAnalyser returns an error only if the default FFT size were
// somehow invalid, which cannot happen with the built-in default.
func (e *Engine) CreateAnalyser() (int32, error) {
	a, err := kernel.NewAnalyzer()
	if err != nil {
		return 0, err
	}
	return e.prepareAndAdd(e.registry.NextID(), node.Analyzer, a), nil
}

func (e *Engine) CreateWaveShaper() int32 {
	return e.prepareAndAdd(e.registry.NextID(), node.WaveShaper, kernel.NewWaveShaper())
}

// RemoveNode deletes id from the registry and severs every edge that
// touched it, including any bridge pairs it participated in.
func (e *Engine) RemoveNode(id int32) error {
	if id == DestinationID {
		return fmt.Errorf("engine: cannot remove destination node")
	}
	e.graph.RemoveNode(id)
	if err := e.registry.Remove(id); err != nil {
		return err
	}
	e.freeBuffers(id)
	return nil
}

// Connect links output channel srcCh of src to input channel dstCh of
// dst. See graph.Connect for cycle-breaking and implicit stereo-pair
// semantics.
func (e *Engine) Connect(src int32, srcCh int, dst int32, dstCh int) error {
	return e.graph.Connect(graph.Port{Node: src, Channel: srcCh}, graph.Port{Node: dst, Channel: dstCh})
}

// Disconnect removes every edge from src to dst regardless of channel.
func (e *Engine) Disconnect(src, dst int32) {
	e.graph.Disconnect(src, dst)
}

// DisconnectAll removes every edge originating at src.
func (e *Engine) DisconnectAll(src int32) {
	e.graph.DisconnectAll(src)
}
