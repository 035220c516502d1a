package buffer

import "sync"

// Pool hands out zeroed Buffers backed by a sync.Pool, so the
// per-channel scratch of nodes that are created and removed often
// (bridge pairs in particular) is reused instead of reallocated.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any { return &Buffer{} },
		},
	}
}

// Get checks out a zeroed Buffer of length samples. The caller returns
// it via Put once it no longer uses it.
func (p *Pool) Get(length int) *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	b.resize(length)
	b.zero()
	return b
}

// Put returns b to the pool. b must not be used again afterward.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}
