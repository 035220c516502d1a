// Package node defines the graph's node records: a node-kind tag, its
// DSP kernel, and its per-parameter automation timelines.
package node

import (
	"sync"

	"github.com/wajuce/audiograph/kernel"
	"github.com/wajuce/audiograph/timeline"
)

// Kind tags which DSP kernel a node record wraps.
type Kind int

const (
	Destination Kind = iota
	Gain
	Oscillator
	BiquadFilter
	StereoPanner
	Delay
	Compressor
	BufferSource
	Analyzer
	WaveShaper
	BridgeSender
	BridgeReceiver
)

func (k Kind) String() string {
	switch k {
	case Destination:
		return "destination"
	case Gain:
		return "gain"
	case Oscillator:
		return "oscillator"
	case BiquadFilter:
		return "biquad-filter"
	case StereoPanner:
		return "stereo-panner"
	case Delay:
		return "delay"
	case Compressor:
		return "compressor"
	case BufferSource:
		return "buffer-source"
	case Analyzer:
		return "analyzer"
	case WaveShaper:
		return "wave-shaper"
	case BridgeSender:
		return "bridge-sender"
	case BridgeReceiver:
		return "bridge-receiver"
	default:
		return "unknown"
	}
}

// recognizedParams lists the parameter names each kind exposes to
// scalar/scheduled param operations. Unknown names are silently
// ignored by scalar setters but still get a timeline when scheduled.
var recognizedParams = map[Kind]map[string]bool{
	Gain:         {"gain": true},
	Oscillator:   {"frequency": true, "detune": true},
	BiquadFilter: {"frequency": true, "Q": true, "gain": true},
	Delay:        {"delayTime": true, "feedback": true},
	StereoPanner: {"pan": true},
	BufferSource: {"playbackRate": true, "detune": true, "decay": true},
	Compressor:   {"threshold": true, "knee": true, "ratio": true, "attack": true, "release": true},
}

// Recognizes reports whether name is a recognized parameter for kind.
func Recognizes(kind Kind, name string) bool {
	return recognizedParams[kind][name]
}

// Node is one entry in the graph's node registry.
type Node struct {
	ID   int32
	Kind Kind

	Kernel kernel.Kernel

	mu        sync.Mutex
	timelines map[string]*timeline.Timeline
}

// NewNode wraps k as a node record with no timelines; Timeline creates
// them on first use.
func NewNode(id int32, kind Kind, k kernel.Kernel) *Node {
	return &Node{ID: id, Kind: kind, Kernel: k, timelines: make(map[string]*timeline.Timeline)}
}

// Timeline returns the timeline for name, creating one seeded with
// initial if it doesn't exist yet.
func (n *Node) Timeline(name string, initial float64) *timeline.Timeline {
	n.mu.Lock()
	defer n.mu.Unlock()
	tl, ok := n.timelines[name]
	if !ok {
		tl = timeline.New(initial)
		n.timelines[name] = tl
	}
	return tl
}

// ExistingTimeline returns the timeline for name if one has already
// been created, without creating it.
func (n *Node) ExistingTimeline(name string) (*timeline.Timeline, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	tl, ok := n.timelines[name]
	return tl, ok
}

// EachTimeline calls fn for every existing (name, timeline) pair. Used
// by the renderer's automation pass.
func (n *Node) EachTimeline(fn func(name string, tl *timeline.Timeline)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for name, tl := range n.timelines {
		fn(name, tl)
	}
}
