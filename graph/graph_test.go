package graph

import (
	"testing"

	"github.com/wajuce/audiograph/kernel"
	"github.com/wajuce/audiograph/node"
)

func newTestGraph() (*node.Registry, *Graph) {
	reg := node.NewRegistry()
	reg.Add(node.NewNode(0, node.Destination, kernel.NewGain()))
	g := New(reg, 128)
	return reg, g
}

func addGain(reg *node.Registry) int32 {
	id := reg.NextID()
	reg.Add(node.NewNode(id, node.Gain, kernel.NewGain()))
	return id
}

func TestConnectSimpleChain(t *testing.T) {
	reg, g := newTestGraph()
	a := addGain(reg)
	b := addGain(reg)

	if err := g.Connect(Port{a, 0}, Port{b, 0}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := g.Connect(Port{b, 0}, Port{0, 0}); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	order := g.Order()
	pos := map[int32]int{}
	for i, id := range order {
		pos[id] = i
	}
	if pos[a] >= pos[b] || pos[b] >= pos[0] {
		t.Fatalf("expected order a < b < destination, got %v", order)
	}
}

func TestMultipleEdgesSumIntoOneInput(t *testing.T) {
	reg, g := newTestGraph()
	a := addGain(reg)
	b := addGain(reg)
	dst := addGain(reg)

	g.Connect(Port{a, 0}, Port{dst, 0})
	g.Connect(Port{b, 0}, Port{dst, 0})

	srcs := g.InputsTo(dst, 0)
	if len(srcs) != 2 {
		t.Fatalf("expected 2 sources feeding dst channel 0, got %d", len(srcs))
	}
}

func TestImplicitStereoLink(t *testing.T) {
	reg, g := newTestGraph()
	a := addGain(reg)
	b := addGain(reg)

	if err := g.Connect(Port{a, 0}, Port{b, 0}); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if srcs := g.InputsTo(b, 1); len(srcs) != 1 || srcs[0] != (Port{a, 1}) {
		t.Fatalf("expected implicit (1,1) link, got %v", srcs)
	}
}

func TestDisconnectRemovesBothChannelsOfAPair(t *testing.T) {
	reg, g := newTestGraph()
	a := addGain(reg)
	b := addGain(reg)

	g.Connect(Port{a, 0}, Port{b, 0}) // also creates the implicit (1,1) link

	g.Disconnect(a, b)

	if srcs := g.InputsTo(b, 0); len(srcs) != 0 {
		t.Fatalf("expected no sources on channel 0 after Disconnect, got %v", srcs)
	}
	if srcs := g.InputsTo(b, 1); len(srcs) != 0 {
		t.Fatalf("expected no sources on channel 1 after Disconnect, got %v", srcs)
	}
}

func TestCycleIsRealizedThroughABridge(t *testing.T) {
	reg, g := newTestGraph()
	a := addGain(reg)
	b := addGain(reg)

	before := reg.Len()

	if err := g.Connect(Port{a, 0}, Port{b, 0}); err != nil {
		t.Fatalf("Connect a->b: %v", err)
	}
	if err := g.Connect(Port{b, 0}, Port{a, 0}); err != nil {
		t.Fatalf("Connect b->a (closes a cycle): %v", err)
	}

	// b->a closes a cycle on both the (0,0) and the implicitly-linked
	// (1,1) port pair, so two bridge pairs (4 synthetic nodes) get
	// spliced in.
	after := reg.Len()
	if after != before+4 {
		t.Fatalf("expected 4 synthetic bridge nodes added, got %d new nodes", after-before)
	}

	// The topological order must still exist and place every node
	// exactly once despite the cycle.
	order := g.Order()
	if len(order) != after {
		t.Fatalf("order has %d entries, want %d", len(order), after)
	}
}

func TestDisconnectAllRemovesEveryOutgoingEdge(t *testing.T) {
	reg, g := newTestGraph()
	a := addGain(reg)
	b := addGain(reg)
	c := addGain(reg)

	g.Connect(Port{a, 0}, Port{b, 0})
	g.Connect(Port{a, 0}, Port{c, 0})

	g.DisconnectAll(a)

	if srcs := g.InputsTo(b, 0); len(srcs) != 0 {
		t.Fatalf("expected b to have no inputs after DisconnectAll(a), got %v", srcs)
	}
	if srcs := g.InputsTo(c, 0); len(srcs) != 0 {
		t.Fatalf("expected c to have no inputs after DisconnectAll(a), got %v", srcs)
	}
}
