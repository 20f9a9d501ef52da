package loop

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Loop is the single-goroutine task executor.
//
// Thread-safety model:
//   - Post(), Stop(), Flush(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Loop struct {
	queue *taskQueue

	mu      sync.Mutex
	running bool
}

// New creates a Loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{queue: newTaskQueue()}
}

// Post schedules fn to run on the loop goroutine.
// Returns false once the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	return l.queue.Enqueue(fn)
}

// Run drains tasks until ctx is cancelled or Stop is called.
//
// On cancellation the queue is closed and ctx.Err() is returned; pending tasks
// are discarded. After Stop, remaining tasks are drained and nil is returned.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		panic("loop: Run called twice")
	}
	l.running = true
	l.mu.Unlock()

	slog.Debug("loop starting")

	for {
		if fn, ok := l.queue.TryDequeue(); ok {
			runTask(fn)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("loop stopping: context cancelled", "dropped", l.queue.Len())
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			// The signal channel closes with the queue, so a stopped loop
			// lands here repeatedly until drained.
			if l.queue.Closed() && l.queue.Len() == 0 {
				slog.Debug("loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the loop to new tasks. Run returns after draining what was
// already posted.
func (l *Loop) Stop() {
	l.queue.Close()
}

// Flush blocks until every task posted before the call has run.
// Returns false if the loop was stopped before the barrier ran, or ctx.Err()
// fired first.
func (l *Loop) Flush(ctx context.Context) bool {
	done := make(chan struct{})
	if !l.Post(func() { close(done) }) {
		return false
	}
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	return l.queue.Len()
}

// runTask invokes fn and recovers from any panic so one misbehaving task
// cannot stop the loop.
func runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("loop task panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
