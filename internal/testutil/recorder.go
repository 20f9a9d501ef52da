package testutil

import "sync"

// Recorder collects notifications. Pass its Record method as a subscriber.
type Recorder[S any] struct {
	mu   sync.Mutex
	seen []S
}

// Record appends s.
func (r *Recorder[S]) Record(s S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, s)
}

// Count returns how many notifications were recorded.
func (r *Recorder[S]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// Values returns a copy of the recorded notifications.
func (r *Recorder[S]) Values() []S {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]S, len(r.seen))
	copy(out, r.seen)
	return out
}

// Last returns the most recent notification; ok is false when none arrived.
func (r *Recorder[S]) Last() (s S, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return s, false
	}
	return r.seen[len(r.seen)-1], true
}
