package store

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/loop"
)

// Reducer computes the next state from the current state and an action.
// Reducers must be pure: no I/O, no retained references to the input state.
type Reducer[A, S any] func(state S, act A) S

// Dispatched describes one applied dispatch, as seen by observers.
type Dispatched[A any] struct {
	Action     A
	Provenance action.Provenance
	Seq        int64
}

// Option configures a Store.
type Option[A, S any] func(*Store[A, S])

// WithObserver registers fn to run after each successful reduction, before
// state subscribers. Used to feed the dispatch journal.
func WithObserver[A, S any](fn func(Dispatched[A])) Option[A, S] {
	return func(s *Store[A, S]) {
		s.observers = append(s.observers, fn)
	}
}

// WithClock sets the logical clock stamping dispatches. Defaults to a fresh
// clock starting at 0.
func WithClock[A, S any](c *loop.Clock) Option[A, S] {
	return func(s *Store[A, S]) {
		s.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger[A, S any](l *slog.Logger) Option[A, S] {
	return func(s *Store[A, S]) {
		s.logger = l
	}
}

// Store holds state and applies actions through a reducer on an executor.
//
// Thread-safety: Dispatch, State and Subscribe may be called from any
// goroutine. Reduction and notification happen only on the executor.
type Store[A, S any] struct {
	exec      loop.Executor
	reduce    Reducer[A, S]
	clock     *loop.Clock
	logger    *slog.Logger
	observers []func(Dispatched[A])

	mu     sync.RWMutex
	state  S
	subs   []*subscription[S]
	nextID uint64
}

type subscription[S any] struct {
	id uint64
	fn func(S)
}

// New creates a store with the given initial state.
func New[A, S any](initial S, reduce Reducer[A, S], exec loop.Executor, opts ...Option[A, S]) *Store[A, S] {
	if reduce == nil {
		panic("store.New: nil reducer")
	}
	if exec == nil {
		panic("store.New: nil executor")
	}
	s := &Store[A, S]{
		exec:   exec,
		reduce: reduce,
		state:  initial,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = loop.NewClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Dispatch posts act onto the executor. It never blocks on reduction and
// never fails; if the executor has shut down the action is logged and
// dropped.
func (s *Store[A, S]) Dispatch(act A, prov action.Provenance) {
	if !s.exec.Post(func() { s.apply(act, prov) }) {
		s.logger.Warn("dispatch rejected: executor stopped",
			"type", action.TypeName(act),
			"origin", prov.String(),
		)
	}
}

// State returns the most recently reduced state.
func (s *Store[A, S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive every new state on the executor.
// The returned function cancels the subscription; it is idempotent.
func (s *Store[A, S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	s.nextID++
	sub := &subscription[S]{id: s.nextID, fn: fn}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(sub.id) })
	}
}

// SubscriberCount returns the number of live subscriptions.
func (s *Store[A, S]) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Seq returns the sequence number of the last applied dispatch.
func (s *Store[A, S]) Seq() int64 {
	return s.clock.Current()
}

func (s *Store[A, S]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// apply runs on the executor.
func (s *Store[A, S]) apply(act A, prov action.Provenance) {
	prev := s.State()

	next, err := s.safeReduce(prev, act)
	if err != nil {
		s.logger.Error("reducer panicked, dispatch dropped",
			"type", action.TypeName(act),
			"origin", prov.String(),
			"error", err,
		)
		return
	}

	seq := s.clock.Next()

	s.mu.Lock()
	s.state = next
	subs := make([]*subscription[S], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.logger.Debug("dispatch applied",
		"seq", seq,
		"type", action.TypeName(act),
		"origin", prov.String(),
	)

	d := Dispatched[A]{Action: act, Provenance: prov, Seq: seq}
	for _, obs := range s.observers {
		s.safeCall(func() { obs(d) }, "observer")
	}
	for _, sub := range subs {
		if !s.live(sub.id) {
			continue
		}
		s.safeCall(func() { sub.fn(next) }, "subscriber")
	}
}

func (s *Store[A, S]) live(id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

func (s *Store[A, S]) safeReduce(state S, act A) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reducer panic: %v", r)
		}
	}()
	return s.reduce(state, act), nil
}

func (s *Store[A, S]) safeCall(fn func(), kind string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("store callback panicked",
				"kind", kind,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
