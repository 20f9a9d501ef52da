package navigation

import (
	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/binding"
	"github.com/roach88/projector/internal/viewmodel"
)

// Selection binds a row-tagged link to the selected tag in state.
//
// Writing tag dispatches onOpen(tag). Writing nil dispatches onClose().
// Writing any other tag is dropped without touching the cache, since that
// write belongs to another row's link. onClose is only evaluated when a close
// is dispatched.
func Selection[A, S any, T comparable](
	vm *viewmodel.ViewModel[A, S],
	tag T,
	path func(S) *T,
	onOpen func(T) A,
	onClose func() A,
	prov action.Provenance,
) *binding.Binding[*T] {
	return binding.New(
		func() *T { return path(vm.State()) },
		func(v *T) {
			switch {
			case v == nil:
				vm.Dispatch(onClose(), prov)
			case *v == tag:
				vm.Dispatch(onOpen(tag), prov)
			}
		},
		binding.Reconcile(sameSelection[T]),
		binding.Accept(func(v *T) bool { return v == nil || *v == tag }),
	)
}

// Active binds whether tag is the selected row, for links driven by a bool.
func Active[A, S any, T comparable](
	vm *viewmodel.ViewModel[A, S],
	tag T,
	path func(S) *T,
	onOpen func(T) A,
	onClose func() A,
	prov action.Provenance,
) *binding.Binding[bool] {
	return binding.New(
		func() bool {
			cur := path(vm.State())
			return cur != nil && *cur == tag
		},
		func(active bool) {
			if active {
				vm.Dispatch(onOpen(tag), prov)
				return
			}
			vm.Dispatch(onClose(), prov)
		},
		binding.ReconcileComparable[bool](),
	)
}

func sameSelection[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
