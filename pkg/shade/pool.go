package shade

import "github.com/taigrr/voxtrace/pkg/tracer"

// Pool keeps released values per key so they can be handed out again instead
// of being reallocated. Values are reset when they are released.
type Pool[K comparable, T any] struct {
	create func(K) (T, error)
	reset  func(T)
	free   map[K][]T
}

// NewPool creates a pool that calls create when no released value is
// available and reset on every released value.
func NewPool[K comparable, T any](create func(K) (T, error), reset func(T)) *Pool[K, T] {
	return &Pool[K, T]{create: create, reset: reset, free: make(map[K][]T)}
}

// Get returns a released value for k, or a new one.
func (p *Pool[K, T]) Get(k K) (T, error) {
	if vs := p.free[k]; len(vs) > 0 {
		v := vs[len(vs)-1]
		p.free[k] = vs[:len(vs)-1]
		return v, nil
	}
	return p.create(k)
}

// Put resets v and keeps it for the next Get of k.
func (p *Pool[K, T]) Put(k K, v T) {
	if p.reset != nil {
		p.reset(v)
	}
	p.free[k] = append(p.free[k], v)
}

// Len is the number of released values held for k.
func (p *Pool[K, T]) Len(k K) int {
	return len(p.free[k])
}

// ShaderPool pools shaders by type tag.
type ShaderPool = Pool[tracer.Type, Shader]

func NewShaderPool() *ShaderPool {
	return NewPool(New, func(s Shader) { s.Reset() })
}
