// Package graph tracks connections between nodes and produces a cached
// execution order for the renderer. Edges into the same input port sum;
// cycles are broken by splicing in a one-block-latency bridge pair
// rather than rejected outright.
package graph

import (
	"fmt"
	"sync"

	"github.com/wajuce/audiograph/kernel"
	"github.com/wajuce/audiograph/node"
)

// Port identifies one node's numbered input or output.
type Port struct {
	Node    int32
	Channel int
}

// edge is a single realized connection: srcPort feeds dstPort.
type edge struct {
	src, dst Port
}

// bridgePair records the two synthetic nodes standing in for a cut
// cyclic edge, so disconnect can tear it down.
type bridgePair struct {
	origSrc, origDst Port
	senderID         int32
	receiverID       int32
}

// Graph owns the node registry, the connection set, and the cached
// topological execution order derived from it.
type Graph struct {
	mu sync.Mutex

	registry     *node.Registry
	maxBlockSize int

	edges    []edge
	bridges  []bridgePair
	order    []int32 // cached topological order, nil when stale
	adjacent map[int32][]int32

	onNodeRemoved func(id int32)
}

// SetOnNodeRemoved installs a callback invoked whenever the graph
// removes a synthetic bridge node on its own initiative (as opposed to
// nodes the caller removes directly via the registry). Engine uses
// this to free the node's render buffers.
func (g *Graph) SetOnNodeRemoved(fn func(id int32)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onNodeRemoved = fn
}

// New wires a Graph on top of reg. maxBlockSize sizes any bridge
// buffers created for cycle-breaking.
func New(reg *node.Registry, maxBlockSize int) *Graph {
	return &Graph{registry: reg, maxBlockSize: maxBlockSize, adjacent: make(map[int32][]int32)}
}

// Connect links src's output channel to dst's input channel, summing
// with whatever else already feeds that input. If src is reachable
// from dst (i.e. this edge would close a cycle), the edge is realized
// through a bridge pair instead of directly, giving it exactly one
// block of latency. When src and dst are both on channel 0, an implicit
// (1,1) link is also attempted, mirroring stereo pairs connected as a
// unit.
func (g *Graph) Connect(src, dst Port) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.registry.Get(src.Node) == nil {
		return fmt.Errorf("graph: no such node %d", src.Node)
	}
	if g.registry.Get(dst.Node) == nil {
		return fmt.Errorf("graph: no such node %d", dst.Node)
	}

	g.attemptConnect(src, dst)
	if src.Channel == 0 && dst.Channel == 0 {
		g.attemptConnect(Port{src.Node, 1}, Port{dst.Node, 1})
	}
	return nil
}

func (g *Graph) attemptConnect(src, dst Port) {
	if g.isReachable(dst.Node, src.Node) {
		g.spliceBridge(src, dst)
		return
	}
	g.edges = append(g.edges, edge{src: src, dst: dst})
	g.adjacent[src.Node] = append(g.adjacent[src.Node], dst.Node)
	g.order = nil
}

// isReachable reports whether to is reachable from from by following
// existing edges, i.e. whether adding to->from would close a cycle.
func (g *Graph) isReachable(from, to int32) bool {
	if from == to {
		return true
	}
	visited := make(map[int32]bool)
	var visit func(n int32) bool
	visit = func(n int32) bool {
		if n == to {
			return true
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		for _, next := range g.adjacent[n] {
			if visit(next) {
				return true
			}
		}
		return false
	}
	return visit(from)
}

// spliceBridge realizes src->dst through a fresh sender/receiver pair
// sharing one buffer, breaking the cycle the direct edge would close.
func (g *Graph) spliceBridge(src, dst Port) {
	shared := kernel.NewBridge(g.maxBlockSize)

	ctx := kernel.Context{MaxBlockSize: g.maxBlockSize}

	senderID := g.registry.NextID()
	senderKernel := kernel.NewBridgeSender(shared)
	senderKernel.Prepare(ctx)
	sender := node.NewNode(senderID, node.BridgeSender, senderKernel)
	g.registry.Add(sender)

	receiverID := g.registry.NextID()
	receiverKernel := kernel.NewBridgeReceiver(shared)
	receiverKernel.Prepare(ctx)
	receiver := node.NewNode(receiverID, node.BridgeReceiver, receiverKernel)
	g.registry.Add(receiver)

	g.edges = append(g.edges,
		edge{src: src, dst: Port{Node: senderID, Channel: 0}},
		edge{src: Port{Node: receiverID, Channel: 0}, dst: dst},
	)
	g.adjacent[src.Node] = append(g.adjacent[src.Node], senderID)
	g.adjacent[receiverID] = append(g.adjacent[receiverID], dst.Node)

	g.bridges = append(g.bridges, bridgePair{
		origSrc: src, origDst: dst,
		senderID: senderID, receiverID: receiverID,
	})
	g.order = nil
}

// Disconnect removes every edge from src's node to dst's node,
// regardless of which channel pair carried it, and tears down any
// bridge pair standing in for a cyclic connection between them.
func (g *Graph) Disconnect(srcNode, dstNode int32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.src.Node == srcNode && e.dst.Node == dstNode {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	remainingBridges := g.bridges[:0]
	for _, b := range g.bridges {
		if b.origSrc.Node == srcNode && b.origDst.Node == dstNode {
			g.teardownBridge(b)
			continue
		}
		remainingBridges = append(remainingBridges, b)
	}
	g.bridges = remainingBridges

	g.rebuildAdjacency()
	g.order = nil
}

// DisconnectAll removes every edge originating at srcNode and tears
// down any bridge pairs it fed.
func (g *Graph) DisconnectAll(srcNode int32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.src.Node == srcNode {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	remainingBridges := g.bridges[:0]
	for _, b := range g.bridges {
		if b.origSrc.Node == srcNode {
			g.teardownBridge(b)
			continue
		}
		remainingBridges = append(remainingBridges, b)
	}
	g.bridges = remainingBridges

	g.rebuildAdjacency()
	g.order = nil
}

// RemoveNode drops every edge touching nodeID (as either endpoint) and
// any bridge pair it participated in. Callers remove nodeID from the
// registry themselves.
func (g *Graph) RemoveNode(nodeID int32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.src.Node == nodeID || e.dst.Node == nodeID {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	remainingBridges := g.bridges[:0]
	for _, b := range g.bridges {
		if b.origSrc.Node == nodeID || b.origDst.Node == nodeID {
			g.teardownBridge(b)
			continue
		}
		remainingBridges = append(remainingBridges, b)
	}
	g.bridges = remainingBridges

	g.rebuildAdjacency()
	g.order = nil
}

func (g *Graph) teardownBridge(b bridgePair) {
	g.removeNodeEdges(b.senderID)
	g.removeNodeEdges(b.receiverID)
	g.registry.Remove(b.senderID)
	g.registry.Remove(b.receiverID)
	if g.onNodeRemoved != nil {
		g.onNodeRemoved(b.senderID)
		g.onNodeRemoved(b.receiverID)
	}
}

func (g *Graph) removeNodeEdges(nodeID int32) {
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.src.Node == nodeID || e.dst.Node == nodeID {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
}

func (g *Graph) rebuildAdjacency() {
	g.adjacent = make(map[int32][]int32)
	for _, e := range g.edges {
		g.adjacent[e.src.Node] = append(g.adjacent[e.src.Node], e.dst.Node)
	}
}

// InvalidateOrder forces the next Order call to recompute the
// topological schedule. Callers use this after adding a node with no
// edges yet, since Order otherwise has no signal that the node set
// changed.
func (g *Graph) InvalidateOrder() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.order = nil
}

// InputsTo returns every (sourcePort) feeding channel `channel` of
// dstNode's input, in edge-insertion order. Multiple entries mean the
// renderer must sum them.
func (g *Graph) InputsTo(dstNode int32, channel int) []Port {
	g.mu.Lock()
	defer g.mu.Unlock()
	var srcs []Port
	for _, e := range g.edges {
		if e.dst.Node == dstNode && e.dst.Channel == channel {
			srcs = append(srcs, e.src)
		}
	}
	return srcs
}

// Order returns the cached topological order of every node reachable
// in the current edge set (recomputing it via Kahn's algorithm if the
// topology changed since the last call). Nodes with no inbound edges,
// isolated ones included, seed the walk, so every registered node
// renders; their relative order follows registry map iteration and is
// not fixed.
func (g *Graph) Order() []int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.order != nil {
		return g.order
	}
	g.order = g.topoSort()
	return g.order
}

func (g *Graph) topoSort() []int32 {
	inDegree := make(map[int32]int)
	all := make(map[int32]bool)
	g.registry.Each(func(n *node.Node) {
		all[n.ID] = true
		inDegree[n.ID] = 0
	})
	for _, e := range g.edges {
		inDegree[e.dst.Node]++
	}

	var queue []int32
	g.registry.Each(func(n *node.Node) {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	})

	var order []int32
	visited := make(map[int32]bool)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		order = append(order, n)
		for _, next := range g.adjacent[n] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	// Any node not reached (shouldn't happen once cycles are bridged,
	// but isolated or misconfigured nodes still need to render as
	// silence sources) is appended so the renderer always visits every
	// live node exactly once.
	for id := range all {
		if !visited[id] {
			order = append(order, id)
		}
	}
	return order
}
