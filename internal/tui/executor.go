package tui

import (
	"log/slog"
	"runtime/debug"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// drainMsg asks Update to run queued executor tasks.
type drainMsg struct{}

// Executor runs store work inside the bubbletea Update loop, which makes
// Update the single UI-affine context.
//
// Post queues the task and, at most once per batch, sends a drainMsg to the
// program from a helper goroutine (Program.Send blocks while Update runs).
// Before Attach, tasks only queue.
type Executor struct {
	mu        sync.Mutex
	tasks     []func()
	send      func(tea.Msg)
	scheduled bool
	closed    bool
}

// NewExecutor creates an executor with no program attached.
func NewExecutor() *Executor {
	return &Executor{}
}

// Attach connects the executor to a running program's Send.
func (e *Executor) Attach(send func(tea.Msg)) {
	e.mu.Lock()
	e.send = send
	e.scheduleLocked()
	e.mu.Unlock()
}

// Post queues fn. Returns false after Close.
func (e *Executor) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.tasks = append(e.tasks, fn)
	e.scheduleLocked()
	return true
}

// Close rejects further tasks. Queued tasks are dropped.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.tasks = nil
}

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// Drain runs queued tasks, including ones posted while draining, and returns
// how many ran. Must be called from Update.
func (e *Executor) Drain() int {
	ran := 0
	for {
		e.mu.Lock()
		batch := e.tasks
		e.tasks = nil
		e.scheduled = false
		e.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			runTask(fn)
			ran++
		}
	}
}

func (e *Executor) scheduleLocked() {
	if e.scheduled || e.send == nil || len(e.tasks) == 0 {
		return
	}
	e.scheduled = true
	send := e.send
	go send(drainMsg{})
}

func runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ui task panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
