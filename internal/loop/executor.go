package loop

import "sync"

// Executor runs callbacks serially on one designated context.
//
// Post schedules fn and returns false if the executor no longer accepts work.
// Implementations must run tasks in post order and never concurrently.
type Executor interface {
	Post(fn func()) bool
}

// Inline is an Executor that runs tasks on the posting goroutine. Use it when
// the caller already is the UI-affine context.
//
// A task posted while another task runs (a subscriber that dispatches, for
// instance) is queued and runs after the current task returns, so tasks never
// nest and keep post order. The zero value is ready to use; it must not be
// copied after first use.
type Inline struct {
	mu      sync.Mutex
	running bool
	queue   []func()
}

// NewInline creates an inline executor.
func NewInline() *Inline {
	return &Inline{}
}

// Post runs fn before returning, unless a task is already running; then fn is
// queued behind it. Returns false for a nil fn.
func (e *Inline) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	e.mu.Lock()
	if e.running {
		e.queue = append(e.queue, fn)
		e.mu.Unlock()
		return true
	}
	e.running = true
	e.mu.Unlock()

	for {
		runTask(fn)

		e.mu.Lock()
		if len(e.queue) == 0 {
			e.running = false
			e.mu.Unlock()
			return true
		}
		fn = e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()
	}
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func()) bool

// Post calls f(fn).
func (f ExecutorFunc) Post(fn func()) bool {
	return f(fn)
}
