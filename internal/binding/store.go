package binding

import (
	"log/slog"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/viewmodel"
)

// FromViewModel binds a value derived from vm's state.
//
// Writes update the cache and dispatch the action onChange produces. When
// onChange declines (returns false), the write only updates the cache.
// Every dispatch carries prov.
func FromViewModel[A, S, V any](
	vm *viewmodel.ViewModel[A, S],
	get func(S) V,
	onChange func(V) (A, bool),
	prov action.Provenance,
	opts ...Option[V],
) *Binding[V] {
	return New(
		func() V { return get(vm.State()) },
		func(v V) {
			act, ok := onChange(v)
			if !ok {
				slog.Debug("binding write kept local: no action",
					"origin", prov.String(),
				)
				return
			}
			vm.Dispatch(act, prov)
		},
		opts...,
	)
}

// FromAction is FromViewModel for handlers that always produce an action.
func FromAction[A, S, V any](
	vm *viewmodel.ViewModel[A, S],
	get func(S) V,
	onChange func(V) A,
	prov action.Provenance,
	opts ...Option[V],
) *Binding[V] {
	return FromViewModel(vm, get, func(v V) (A, bool) { return onChange(v), true }, prov, opts...)
}

// ReadOnly binds a value derived from vm's state; writes are ignored,
// including the cache.
func ReadOnly[A, S, V any](vm *viewmodel.ViewModel[A, S], get func(S) V) *Binding[V] {
	b := New(func() V { return get(vm.State()) }, nil)
	b.ignore = true
	return b
}
