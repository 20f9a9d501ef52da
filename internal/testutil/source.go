package testutil

import "sync"

// Source is a view-model source whose state changes only when the test
// publishes. Dispatches are recorded and never reduced, modelling a store
// that drops every update.
type Source[A, S any] struct {
	Dispatcher[A]

	mu    sync.Mutex
	state S
	subs  map[int]func(S)
	next  int
}

// NewSource creates a source holding initial.
func NewSource[A, S any](initial S) *Source[A, S] {
	return &Source[A, S]{state: initial, subs: map[int]func(S){}}
}

// State returns the last published state.
func (f *Source[A, S]) State() S {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn for published states.
func (f *Source[A, S]) Subscribe(fn func(S)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Publish sets the state and notifies subscribers in subscription order,
// on the calling goroutine.
func (f *Source[A, S]) Publish(s S) {
	f.mu.Lock()
	f.state = s
	fns := make([]func(S), 0, len(f.subs))
	for i := 0; i < f.next; i++ {
		if fn, ok := f.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (f *Source[A, S]) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
