package node

import (
	"testing"

	"github.com/wajuce/audiograph/kernel"
)

func TestRegistryReservesDestinationID(t *testing.T) {
	r := NewRegistry()
	if id := r.NextID(); id != 1 {
		t.Fatalf("first allocated id = %d, want 1 (0 is reserved for destination)", id)
	}
}

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry()
	id := r.NextID()
	n := NewNode(id, Gain, kernel.NewGain())
	r.Add(n)

	if got := r.Get(id); got != n {
		t.Fatalf("Get(%d) = %v, want %v", id, got, n)
	}
	if err := r.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := r.Get(id); got != nil {
		t.Fatalf("Get after Remove = %v, want nil", got)
	}
}

func TestRegistryCannotRemoveDestination(t *testing.T) {
	r := NewRegistry()
	dest := NewNode(0, Destination, kernel.NewGain())
	r.Add(dest)
	if err := r.Remove(0); err == nil {
		t.Fatalf("expected error removing destination node")
	}
}

func TestNodeTimelineLazyCreate(t *testing.T) {
	n := NewNode(1, Gain, kernel.NewGain())
	if _, ok := n.ExistingTimeline("gain"); ok {
		t.Fatalf("expected no timeline before first access")
	}
	tl := n.Timeline("gain", 1.0)
	if tl.LastValue() != 1.0 {
		t.Fatalf("LastValue() = %v, want 1.0", tl.LastValue())
	}
	tl2 := n.Timeline("gain", 0.0)
	if tl2 != tl {
		t.Fatalf("Timeline should return the same instance on repeat calls")
	}
}

func TestRecognizesParams(t *testing.T) {
	if !Recognizes(Gain, "gain") {
		t.Fatalf("gain node should recognize \"gain\"")
	}
	if Recognizes(Gain, "frequency") {
		t.Fatalf("gain node should not recognize \"frequency\"")
	}
}
