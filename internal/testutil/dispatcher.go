package testutil

import (
	"sync"

	"github.com/roach88/projector/internal/action"
)

// Dispatch is one recorded call.
type Dispatch[A any] struct {
	Action     A
	Provenance action.Provenance
}

// Dispatcher records every dispatched action and never reduces it.
//
// Thread-safety: all methods are safe for concurrent use.
type Dispatcher[A any] struct {
	mu    sync.Mutex
	calls []Dispatch[A]
}

// Dispatch records act with its provenance.
func (d *Dispatcher[A]) Dispatch(act A, prov action.Provenance) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Dispatch[A]{Action: act, Provenance: prov})
}

// Calls returns a copy of the recorded calls in dispatch order.
func (d *Dispatcher[A]) Calls() []Dispatch[A] {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Dispatch[A], len(d.calls))
	copy(out, d.calls)
	return out
}

// Actions returns the recorded actions in dispatch order.
func (d *Dispatcher[A]) Actions() []A {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]A, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Action
	}
	return out
}

// Len returns the number of recorded calls.
func (d *Dispatcher[A]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}
