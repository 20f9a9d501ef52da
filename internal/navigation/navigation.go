package navigation

import (
	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/binding"
	"github.com/roach88/projector/internal/producer"
	"github.com/roach88/projector/internal/viewmodel"
)

// Poppable is implemented by action types with a distinguished "a presented
// screen was popped by the platform" action.
type Poppable[A any] interface {
	PopAction() A
}

// PopOf returns A's pop action, obtained from the zero value.
func PopOf[A Poppable[A]]() A {
	var zero A
	return zero.PopAction()
}

// Presentation is a presented screen's binding and content.
type Presentation[C, V any] struct {
	// Binding reads the optional context; writing nil reports a dismissal.
	Binding *binding.Binding[*C]
	// Content is the produced view. Zero when nothing is presented.
	Content V
	// Present reports whether a context was present when built.
	Present bool
}

const (
	sheetDismiss       = "sheet dismiss"
	destinationDismiss = "destination dismiss"
	linkPop            = "link pop"
)

// Sheet presents content while path yields a context. Writing nil into the
// binding dispatches dismiss; writing a context dispatches nothing.
func Sheet[A, S, C, V any](
	vm *viewmodel.ViewModel[A, S],
	path func(S) *C,
	dismiss A,
	content producer.Producer[C, V],
	prov action.Provenance,
) Presentation[C, V] {
	return present(vm, path, func() A { return dismiss }, content, prov.Append(sheetDismiss))
}

// Destination is Sheet for pushed destinations.
func Destination[A, S, C, V any](
	vm *viewmodel.ViewModel[A, S],
	path func(S) *C,
	dismiss A,
	content producer.Producer[C, V],
	prov action.Provenance,
) Presentation[C, V] {
	return present(vm, path, func() A { return dismiss }, content, prov.Append(destinationDismiss))
}

// Link presents a navigation-tree link. It returns ok=false, without calling
// the producer, when path yields no context. Writing nil into the binding
// dispatches A's pop action.
func Link[A Poppable[A], S, C, V any](
	vm *viewmodel.ViewModel[A, S],
	path func(S) *C,
	content producer.Producer[C, V],
	prov action.Provenance,
) (Presentation[C, V], bool) {
	if path(vm.State()) == nil {
		return Presentation[C, V]{}, false
	}
	return present(vm, path, PopOf[A], content, prov.Append(linkPop)), true
}

func present[A, S, C, V any](
	vm *viewmodel.ViewModel[A, S],
	path func(S) *C,
	onDismiss func() A,
	content producer.Producer[C, V],
	prov action.Provenance,
) Presentation[C, V] {
	b := binding.FromViewModel(vm, path,
		func(c *C) (A, bool) {
			if c != nil {
				var zero A
				return zero, false
			}
			return onDismiss(), true
		},
		prov,
		// Presence is what matters: once the store agrees on present/absent,
		// store state takes over again so the screen can reopen.
		binding.Reconcile(samePresence[C]),
	)

	p := Presentation[C, V]{Binding: b}
	if ctx := path(vm.State()); ctx != nil {
		p.Present = true
		p.Content = content.View(*ctx)
	}
	return p
}

func samePresence[C any](a, b *C) bool {
	return (a == nil) == (b == nil)
}
