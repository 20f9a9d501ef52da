package binding

import (
	"sync"
)

// Option configures a Binding.
type Option[V any] func(*Binding[V])

// Reconcile clears the cached value once get() returns a value equal to it
// under eq.
func Reconcile[V any](eq func(a, b V) bool) Option[V] {
	return func(b *Binding[V]) {
		b.reconcile = eq
	}
}

// ReconcileComparable is Reconcile using ==.
func ReconcileComparable[V comparable]() Option[V] {
	return Reconcile(func(a, b V) bool { return a == b })
}

// Accept drops writes for which ok returns false: they are neither cached
// nor passed to set.
func Accept[V any](ok func(V) bool) Option[V] {
	return func(b *Binding[V]) {
		b.accept = ok
	}
}

// Binding is a two-way value adapter with an optimistic write cache.
//
// Thread-safety: Read and Write are safe for concurrent use. get and set are
// called without holding the binding's lock.
type Binding[V any] struct {
	get       func() V
	set       func(V)
	reconcile func(a, b V) bool
	accept    func(V) bool
	ignore    bool

	mu     sync.Mutex
	cached V
	has    bool
}

// New creates a binding over get and set.
func New[V any](get func() V, set func(V), opts ...Option[V]) *Binding[V] {
	if get == nil {
		panic("binding.New: nil getter")
	}
	if set == nil {
		set = func(V) {}
	}
	b := &Binding[V]{get: get, set: set}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Constant returns a binding that always reads v and ignores writes.
func Constant[V any](v V) *Binding[V] {
	return &Binding[V]{
		get:    func() V { return v },
		set:    func(V) {},
		ignore: true,
	}
}

// Read returns the cached value if one was written, otherwise get().
func (b *Binding[V]) Read() V {
	b.mu.Lock()
	cached, has := b.cached, b.has
	b.mu.Unlock()

	if !has {
		return b.get()
	}
	if b.reconcile == nil {
		return cached
	}

	current := b.get()
	if !b.equal(cached, current) {
		return cached
	}

	b.mu.Lock()
	// A write may have landed since the snapshot; only clear what we compared.
	if b.has && b.equal(b.cached, cached) {
		var zero V
		b.cached, b.has = zero, false
	}
	b.mu.Unlock()
	return current
}

// Write caches v, then calls set(v).
func (b *Binding[V]) Write(v V) {
	if b.ignore || (b.accept != nil && !b.accept(v)) {
		return
	}
	b.mu.Lock()
	b.cached, b.has = v, true
	b.mu.Unlock()

	b.set(v)
}

// Cached returns the cached value and whether there is one.
func (b *Binding[V]) Cached() (V, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cached, b.has
}

// equal applies the reconcile comparator; a panic counts as unequal.
func (b *Binding[V]) equal(x, y V) (eq bool) {
	defer func() {
		if r := recover(); r != nil {
			eq = false
		}
	}()
	return b.reconcile(x, y)
}
