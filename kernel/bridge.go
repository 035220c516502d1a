package kernel

// Bridge realizes one arc of a cycle as one block of latency: a
// sender copies its input into a buffer shared with a receiver, which
// on the next block sources its output from that buffer. Sender and
// receiver are separate nodes in the graph so the acyclic execution
// order sees a sink (sender) followed, in the next block, by a source
// (receiver).
type Bridge struct {
	buf [][]float64
}

// NewBridge allocates a shared buffer sized to maxBlockSize.
func NewBridge(maxBlockSize int) *Bridge {
	b := &Bridge{buf: make([][]float64, Channels)}
	for ch := range b.buf {
		b.buf[ch] = make([]float64, maxBlockSize)
	}
	return b
}

// BridgeSender copies its block-N input into the shared buffer and
// produces no output of its own (it is a graph sink).
type BridgeSender struct {
	bridge *Bridge
}

func NewBridgeSender(b *Bridge) *BridgeSender { return &BridgeSender{bridge: b} }

func (s *BridgeSender) Prepare(ctx Context) {
	if len(s.bridge.buf[0]) < ctx.MaxBlockSize {
		for ch := range s.bridge.buf {
			s.bridge.buf[ch] = make([]float64, ctx.MaxBlockSize)
		}
	}
}

func (s *BridgeSender) Process(in, _ [][]float64, n int, _ float64) {
	for ch := 0; ch < Channels && ch < len(s.bridge.buf); ch++ {
		copy(s.bridge.buf[ch][:n], in[ch][:n])
	}
}

// BridgeReceiver sources its block-N+1 output from the buffer the
// paired sender wrote during block N.
type BridgeReceiver struct {
	bridge *Bridge
}

func NewBridgeReceiver(b *Bridge) *BridgeReceiver { return &BridgeReceiver{bridge: b} }

func (r *BridgeReceiver) Prepare(ctx Context) {
	if len(r.bridge.buf[0]) < ctx.MaxBlockSize {
		for ch := range r.bridge.buf {
			r.bridge.buf[ch] = make([]float64, ctx.MaxBlockSize)
		}
	}
}

func (r *BridgeReceiver) Process(_, out [][]float64, n int, _ float64) {
	for ch := 0; ch < Channels; ch++ {
		if ch < len(r.bridge.buf) {
			copy(out[ch][:n], r.bridge.buf[ch][:n])
		} else {
			zero(out[ch][:n])
		}
	}
}
