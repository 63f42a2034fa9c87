package generic

import "sync"

// Pool is a typed free-list over sync.Pool. Construct with NewPool so Get
// can mint values on a cold pool.
type Pool[T any] struct {
	inner sync.Pool
}

// NewPool creates a pool that calls generate whenever it runs dry.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		inner: sync.Pool{
			New: func() any { return generate() },
		},
	}
}

// Warm pre-populates the pool with n generated values.
func (p *Pool[T]) Warm(n int) {
	for i := 0; i < n; i++ {
		p.inner.Put(p.inner.New())
	}
}

// Get takes a value from the pool, generating one if none is available.
func (p *Pool[T]) Get() T {
	return p.inner.Get().(T)
}

// Put returns a value to the pool for reuse.
func (p *Pool[T]) Put(v T) {
	p.inner.Put(v)
}
