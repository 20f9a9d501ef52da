package viewmodel

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/roach88/projector/internal/action"
)

// Source is anything a root view-model can wrap: a dispatch entry point, a
// synchronous state snapshot and a state subscription.
// *store.Store and *ViewModel both satisfy it.
type Source[A, S any] interface {
	Dispatch(act A, prov action.Provenance)
	State() S
	Subscribe(fn func(S)) (cancel func())
}

// listener receives parent states. A parent holds it weakly; the child that
// owns it holds it strongly.
type listener[S any] struct {
	receive func(S)
}

type subscriber[S any] struct {
	fn     func(S)
	active atomic.Bool
}

// ViewModel is an observable, projectable view onto store state.
//
// Thread-safety: all methods are safe for concurrent use. Subscribers and
// children are notified on the goroutine delivering source updates.
type ViewModel[A, S any] struct {
	dispatch func(A, action.Provenance)
	policy   EmitPolicy[S]

	// anchor keeps this view-model's listener (registered weakly with the
	// parent) and the parent itself alive.
	anchor any
	parent any

	mu       sync.RWMutex
	state    S
	seeded   bool
	closed   bool
	detach   func()
	subs     []*subscriber[S]
	children []weak.Pointer[listener[S]]
}

// New wraps src in a root view-model. The root caches src's state and
// notifies its subscribers on every update.
func New[A, S any](src Source[A, S]) *ViewModel[A, S] {
	vm := &ViewModel[A, S]{
		dispatch: src.Dispatch,
		policy:   Always[S](),
	}

	l := &listener[S]{receive: vm.update}
	vm.anchor = l
	wp := weak.Make(l)

	cancel := src.Subscribe(func(s S) {
		if l := wp.Value(); l != nil {
			l.receive(s)
		}
	})
	vm.mu.Lock()
	vm.detach = cancel
	vm.mu.Unlock()
	// An unreferenced root must not leave its subscription behind.
	runtime.AddCleanup(vm, func(cancel func()) { cancel() }, cancel)

	vm.seed(src.State())
	return vm
}

// Project derives a child view-model from parent.
//
// The child's state is p.State(parent.State()), recomputed on every parent
// update. Its subscribers are notified per policy. Child dispatches go
// through p.Action; a declined mapping is dropped silently, an accepted one
// is dispatched on parent with the caller's provenance.
func Project[PA, PS, CA, CS any](
	parent *ViewModel[PA, PS],
	p Projection[PA, PS, CA, CS],
	policy EmitPolicy[CS],
) *ViewModel[CA, CS] {
	if p.State == nil || p.Action == nil {
		panic("viewmodel.Project: projection requires State and Action")
	}

	child := &ViewModel[CA, CS]{
		policy: policy,
		parent: parent,
	}
	child.dispatch = func(ca CA, prov action.Provenance) {
		pa, ok := p.Action(ca)
		if !ok {
			slog.Debug("dispatch dropped: no parent mapping",
				"type", action.TypeName(ca),
				"origin", prov.String(),
			)
			return
		}
		parent.Dispatch(pa, prov)
	}

	l := &listener[PS]{receive: func(ps PS) { child.update(p.State(ps)) }}
	child.anchor = l

	detach := parent.attach(l)
	child.mu.Lock()
	child.detach = detach
	child.mu.Unlock()

	child.seed(p.State(parent.State()))
	return child
}

// Focus derives a child that forwards actions unchanged.
func Focus[A, PS, CS any](parent *ViewModel[A, PS], fn func(PS) CS, policy EmitPolicy[CS]) *ViewModel[A, CS] {
	return Project(parent, StateOnly[A](fn), policy)
}

// Dispatch hands act to the underlying store. It returns immediately; the
// resulting state arrives asynchronously, or never if the store drops it.
func (vm *ViewModel[A, S]) Dispatch(act A, prov action.Provenance) {
	vm.dispatch(act, prov)
}

// State returns the cached state without blocking.
func (vm *ViewModel[A, S]) State() S {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.state
}

// Policy returns the view-model's emit policy.
func (vm *ViewModel[A, S]) Policy() EmitPolicy[S] {
	return vm.policy
}

// Subscribe registers fn to run whenever the emit policy lets an update
// through. The returned function cancels the subscription and is idempotent.
func (vm *ViewModel[A, S]) Subscribe(fn func(S)) func() {
	sub := &subscriber[S]{fn: fn}
	sub.active.Store(true)

	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return func() {}
	}
	vm.subs = append(vm.subs, sub)
	vm.mu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}
		vm.mu.Lock()
		defer vm.mu.Unlock()
		for i, s := range vm.subs {
			if s == sub {
				vm.subs = append(vm.subs[:i:i], vm.subs[i+1:]...)
				break
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (vm *ViewModel[A, S]) SubscriberCount() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.subs)
}

// ChildCount returns the number of children still reachable.
func (vm *ViewModel[A, S]) ChildCount() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	n := 0
	for _, wp := range vm.children {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}

// Close detaches the view-model from its parent or source and drops its
// subscribers. The cached state stays readable and Dispatch keeps working.
func (vm *ViewModel[A, S]) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	detach := vm.detach
	vm.detach = nil
	for _, s := range vm.subs {
		s.active.Store(false)
	}
	vm.subs = nil
	vm.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// attach registers a child listener and returns its detach function.
func (vm *ViewModel[A, S]) attach(l *listener[S]) func() {
	wp := weak.Make(l)
	vm.mu.Lock()
	vm.children = append(vm.children, wp)
	vm.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			vm.mu.Lock()
			defer vm.mu.Unlock()
			for i, c := range vm.children {
				if c == wp {
					vm.children = append(vm.children[:i:i], vm.children[i+1:]...)
					return
				}
			}
		})
	}
}

// seed sets the initial state unless an update already arrived.
func (vm *ViewModel[A, S]) seed(s S) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if !vm.seeded {
		vm.state = s
		vm.seeded = true
	}
}

// update stores next, forwards it to live children and notifies subscribers
// when the policy allows.
func (vm *ViewModel[A, S]) update(next S) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	prev, had := vm.state, vm.seeded
	vm.state = next
	vm.seeded = true

	live := make([]*listener[S], 0, len(vm.children))
	kept := vm.children[:0]
	for _, wp := range vm.children {
		if l := wp.Value(); l != nil {
			live = append(live, l)
			kept = append(kept, wp)
		}
	}
	clear(vm.children[len(kept):])
	vm.children = kept

	subs := make([]*subscriber[S], len(vm.subs))
	copy(subs, vm.subs)
	vm.mu.Unlock()

	for _, l := range live {
		l.receive(next)
	}

	if had && !vm.policy.ShouldEmit(prev, next) {
		return
	}
	for _, s := range subs {
		if s.active.Load() {
			safeNotify(s.fn, next)
		}
	}
}

func safeNotify[S any](fn func(S), s S) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("view-model subscriber panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn(s)
}
