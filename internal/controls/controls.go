// Package controls turns UI events into dispatches.
//
// Handlers built here produce their action only when the event fires, so
// building a handler per render costs nothing until it is used.
package controls

import (
	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/viewmodel"
)

// Dispatcher accepts actions. *viewmodel.ViewModel and *store.Store both
// satisfy it.
type Dispatcher[A any] interface {
	Dispatch(act A, prov action.Provenance)
}

// Trigger returns a handler for argument-less events (button press, tap,
// appear). produce runs each time the handler fires.
func Trigger[A any](d Dispatcher[A], produce func() A, prov action.Provenance) func() {
	return func() {
		d.Dispatch(produce(), prov)
	}
}

// OnValue returns a handler for events carrying a value (hover, key press,
// received message).
func OnValue[A, T any](d Dispatcher[A], produce func(T) A, prov action.Provenance) func(T) {
	return func(v T) {
		d.Dispatch(produce(v), prov)
	}
}

// OnValueMaybe is OnValue for events that may not map to an action. The
// handler reports whether it dispatched.
func OnValueMaybe[A, T any](d Dispatcher[A], produce func(T) (A, bool), prov action.Provenance) func(T) bool {
	return func(v T) bool {
		act, ok := produce(v)
		if !ok {
			return false
		}
		d.Dispatch(act, prov)
		return true
	}
}

// Text returns a label source reading from vm's current state.
func Text[A, S any](vm *viewmodel.ViewModel[A, S], fn func(S) string) func() string {
	return func() string {
		return fn(vm.State())
	}
}
