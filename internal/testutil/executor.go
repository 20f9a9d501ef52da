package testutil

import "sync"

// ManualExecutor queues posted work until the test runs it, so tests can
// observe the window between a dispatch and its reduction.
type ManualExecutor struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
}

// Post queues fn. It reports false after Close.
func (e *ManualExecutor) Post(fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.tasks = append(e.tasks, fn)
	return true
}

// RunAll runs queued work, including work posted while running, until the
// queue is empty. It returns the number of tasks run.
func (e *ManualExecutor) RunAll() int {
	n := 0
	for {
		e.mu.Lock()
		if len(e.tasks) == 0 {
			e.mu.Unlock()
			return n
		}
		fn := e.tasks[0]
		e.tasks = e.tasks[1:]
		e.mu.Unlock()

		fn()
		n++
	}
}

// Pending returns the number of queued tasks.
func (e *ManualExecutor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// Close rejects further posts. Queued work stays queued.
func (e *ManualExecutor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}
