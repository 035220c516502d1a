// Package ring implements a lock-free single-producer single-consumer
// sample ring, and a multi-channel wrapper around it, for moving audio
// data between the render thread and external producers/consumers
// without copies or blocking.
package ring

import "sync/atomic"

// Ring is a fixed-capacity float64 SPSC ring buffer. Exactly one
// goroutine may call Write, and exactly one (possibly different)
// goroutine may call Read; both are wait-free and never block.
//
// One cell is always kept empty so that writePos == readPos
// unambiguously means empty.
type Ring struct {
	buf      []float64
	capacity int64
	readPos  atomic.Int64
	writePos atomic.Int64
}

// New returns a ring with room for capacity-1 usable samples.
func New(capacity int) *Ring {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring{
		buf:      make([]float64, capacity),
		capacity: int64(capacity),
	}
}

// Capacity returns the ring's total slot count (including the one
// reserved empty cell).
func (r *Ring) Capacity() int {
	return int(r.capacity)
}

// AvailableToRead returns the number of samples a reader can consume
// right now.
func (r *Ring) AvailableToRead() int {
	w := r.writePos.Load()
	rp := r.readPos.Load()
	diff := w - rp
	if diff < 0 {
		diff += r.capacity
	}
	return int(diff)
}

// AvailableToWrite returns the number of samples a writer can produce
// right now without overrunning the reader.
func (r *Ring) AvailableToWrite() int {
	w := r.writePos.Load()
	rp := r.readPos.Load()
	diff := rp - w - 1
	if diff < 0 {
		diff += r.capacity
	}
	return int(diff)
}

// Write copies min(len(src), AvailableToWrite()) samples into the ring
// and returns how many it wrote. It never blocks and never silently
// drops a partial write's count.
func (r *Ring) Write(src []float64) int {
	avail := r.AvailableToWrite()
	toWrite := len(src)
	if toWrite > avail {
		toWrite = avail
	}
	w := r.writePos.Load()
	for i := 0; i < toWrite; i++ {
		r.buf[w] = src[i]
		w++
		if w >= r.capacity {
			w = 0
		}
	}
	r.writePos.Store(w)
	return toWrite
}

// Read copies min(len(dst), AvailableToRead()) samples out of the ring
// and returns how many it read.
func (r *Ring) Read(dst []float64) int {
	avail := r.AvailableToRead()
	toRead := len(dst)
	if toRead > avail {
		toRead = avail
	}
	rp := r.readPos.Load()
	for i := 0; i < toRead; i++ {
		dst[i] = r.buf[rp]
		rp++
		if rp >= r.capacity {
			rp = 0
		}
	}
	r.readPos.Store(rp)
	return toRead
}

// Clear resets both positions and zeroes the backing buffer. Callers
// must ensure no concurrent Read/Write is in flight.
func (r *Ring) Clear() {
	r.readPos.Store(0)
	r.writePos.Store(0)
	for i := range r.buf {
		r.buf[i] = 0
	}
}

// ReadPos returns the current read index, for FFI-style zero-copy
// exposure of the underlying buffer.
func (r *Ring) ReadPos() int { return int(r.readPos.Load()) }

// WritePos returns the current write index.
func (r *Ring) WritePos() int { return int(r.writePos.Load()) }

// SetReadPos forces the read index, wrapping into range. Intended for
// external consumers manipulating the ring directly through exposed
// pointers; callers accept responsibility for coherence.
func (r *Ring) SetReadPos(pos int) {
	r.readPos.Store(wrap(int64(pos), r.capacity))
}

// SetWritePos forces the write index, wrapping into range.
func (r *Ring) SetWritePos(pos int) {
	r.writePos.Store(wrap(int64(pos), r.capacity))
}

// RawBuffer exposes the backing slice directly for zero-copy access by
// an external producer/consumer that manages its own synchronization.
func (r *Ring) RawBuffer() []float64 { return r.buf }

func wrap(pos, capacity int64) int64 {
	pos %= capacity
	if pos < 0 {
		pos += capacity
	}
	return pos
}
