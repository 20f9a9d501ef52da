// Package producer wraps context-to-view functions so they can live inside
// derived state.
//
// Producers always compare equal. A view-model holding a producer next to
// its context is considered unchanged exactly when the context is, which is
// what WhenDifferent diffing needs: the closure itself cannot be compared.
package producer

// Producer turns a context value into a view.
type Producer[C, V any] struct {
	fn func(C) V
}

// New wraps fn.
func New[C, V any](fn func(C) V) Producer[C, V] {
	return Producer[C, V]{fn: fn}
}

// Empty returns a producer that ignores its context and yields the zero view.
func Empty[C, V any]() Producer[C, V] {
	return Producer[C, V]{}
}

// Pure returns a producer that ignores its context and always yields v.
func Pure[C, V any](v V) Producer[C, V] {
	return Producer[C, V]{fn: func(C) V { return v }}
}

// View produces the view for c.
func (p Producer[C, V]) View(c C) V {
	if p.fn == nil {
		var zero V
		return zero
	}
	return p.fn(c)
}

// Equal reports true for every pair of producers.
func (p Producer[C, V]) Equal(Producer[C, V]) bool {
	return true
}

// IsEmpty reports whether p is the empty producer.
func (p Producer[C, V]) IsEmpty() bool {
	return p.fn == nil
}

// Erase hides the view type.
func (p Producer[C, V]) Erase() Producer[C, any] {
	if p.fn == nil {
		return Producer[C, any]{}
	}
	return Producer[C, any]{fn: func(c C) any { return p.fn(c) }}
}

// Map post-processes the views p produces.
func Map[C, V, W any](p Producer[C, V], fn func(V) W) Producer[C, W] {
	return Producer[C, W]{fn: func(c C) W { return fn(p.View(c)) }}
}

// Contramap adapts p to a different context type.
func Contramap[C, D, V any](p Producer[C, V], fn func(D) C) Producer[D, V] {
	if p.fn == nil {
		return Producer[D, V]{}
	}
	return Producer[D, V]{fn: func(d D) V { return p.fn(fn(d)) }}
}
