package ring

import (
	"math/rand"
	"testing"
)

func TestRingBasicWriteRead(t *testing.T) {
	r := New(8)
	n := r.Write([]float64{1, 2, 3})
	if n != 3 {
		t.Fatalf("wrote %d, want 3", n)
	}
	dst := make([]float64, 3)
	n = r.Read(dst)
	if n != 3 {
		t.Fatalf("read %d, want 3", n)
	}
	for i, v := range []float64{1, 2, 3} {
		if dst[i] != v {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], v)
		}
	}
}

func TestRingNeverOverfills(t *testing.T) {
	r := New(4) // 3 usable slots
	src := []float64{1, 2, 3, 4, 5}
	n := r.Write(src)
	if n != 3 {
		t.Fatalf("wrote %d, want 3 (capacity-1)", n)
	}
	if r.AvailableToWrite() != 0 {
		t.Fatalf("available to write = %d, want 0", r.AvailableToWrite())
	}
}

func TestRingInvariantSumsToCapacityMinusOne(t *testing.T) {
	r := New(16)
	rng := rand.New(rand.NewSource(1))
	buf := make([]float64, 4)
	for i := 0; i < 500; i++ {
		switch rng.Intn(2) {
		case 0:
			r.Write(buf[:rng.Intn(4)+1])
		case 1:
			r.Read(buf[:rng.Intn(4)+1])
		}
		if got := r.AvailableToRead() + r.AvailableToWrite(); got != r.Capacity()-1 {
			t.Fatalf("available_to_read + available_to_write = %d, want %d", got, r.Capacity()-1)
		}
	}
}

// TestRingOrderingUnderInterleaving exercises the ring correctness
// property: total values observed equal min(W, R) in write order.
func TestRingOrderingUnderInterleaving(t *testing.T) {
	r := New(6)
	written := make([]float64, 0, 200)
	observed := make([]float64, 0, 200)

	rng := rand.New(rand.NewSource(42))
	next := 0.0
	buf := make([]float64, 8)

	for i := 0; i < 1000; i++ {
		if rng.Intn(2) == 0 {
			burst := rng.Intn(4) + 1
			for j := 0; j < burst; j++ {
				buf[j] = next
				next++
			}
			n := r.Write(buf[:burst])
			for j := 0; j < n; j++ {
				written = append(written, buf[j])
			}
		} else {
			n := r.Read(buf[:rng.Intn(4)+1])
			observed = append(observed, buf[:n]...)
		}
	}
	// Drain remainder.
	for {
		n := r.Read(buf)
		if n == 0 {
			break
		}
		observed = append(observed, buf[:n]...)
	}

	if len(observed) != len(written) {
		t.Fatalf("observed %d values, want %d", len(observed), len(written))
	}
	for i := range observed {
		if observed[i] != written[i] {
			t.Fatalf("observed[%d] = %v, want %v", i, observed[i], written[i])
		}
	}
}

func TestMultiChannelsIndependent(t *testing.T) {
	m := NewMulti(2, 8)
	m.Channel(0).Write([]float64{1, 2})
	dst := make([]float64, 2)
	if n := m.Channel(1).Read(dst); n != 0 {
		t.Fatalf("channel 1 read %d samples, want 0 (independent of channel 0)", n)
	}
	if n := m.Channel(0).Read(dst); n != 2 {
		t.Fatalf("channel 0 read %d, want 2", n)
	}
}
