package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/journal"
	"github.com/roach88/projector/internal/loop"
	"github.com/roach88/projector/internal/producer"
	"github.com/roach88/projector/internal/rows"
	"github.com/roach88/projector/internal/store"
	"github.com/roach88/projector/internal/todo"
	"github.com/roach88/projector/internal/viewmodel"
)

// provenanceFile is the File recorded for every scenario dispatch.
const provenanceFile = "scenario"

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Open an in-memory journal and a recorder for the scenario session
//  2. Build the store on the inline executor, journaling every dispatch
//  3. Build the root view-model and one row view-model per visible item
//  4. Run each step through the matching adapter
//  5. Read the journal back into the trace
//  6. Evaluate assertions
//
// Returned errors are infrastructure failures. Step and assertion failures
// are reported in Result.Errors with Pass=false.
func Run(s *Scenario) (*Result, error) {
	return RunContext(context.Background(), s)
}

// RunContext is Run with a caller-supplied context for journal access.
func RunContext(ctx context.Context, s *Scenario) (*Result, error) {
	j, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	session := s.Session
	if session == "" {
		session = DefaultSession
	}
	rec := journal.NewRecorder(j, journal.NewFixedGenerator(session))

	st := store.New(todo.NewState(s.Title, s.Items...), todo.Reduce, loop.NewInline(),
		store.WithObserver[todo.Action, todo.State](func(d store.Dispatched[todo.Action]) {
			rec.Record(ctx, d.Action, d.Provenance, d.Seq)
		}),
		store.WithLogger[todo.Action, todo.State](slog.New(slog.DiscardHandler)),
	)

	vm := viewmodel.New[todo.Action, todo.State](st)
	defer vm.Close()

	result := NewResult()
	rt := &driver{vm: vm, emissions: result.RowEmissions}
	rt.rebuild()
	defer rt.close()

	cancel := vm.Subscribe(func(next todo.State) {
		if !slices.Equal(visibleIDs(next), rows.IDs(rt.rows, todo.Item.RowID)) {
			rt.rebuild()
		}
	})
	defer cancel()

	for i, step := range s.Steps {
		prov := action.Provenance{
			File:     provenanceFile,
			Function: s.Name,
			Line:     i + 1,
			Info:     step.Info,
		}
		if err := rt.step(step, prov); err != nil {
			result.AddError(fmt.Sprintf("step[%d]: %v", i, err))
		}
	}

	result.State = vm.State()

	if n := rec.Failures(); n > 0 {
		return nil, fmt.Errorf("failed to journal %d dispatches", n)
	}

	trace, err := readTrace(ctx, j, rec.Session())
	if err != nil {
		return nil, err
	}
	result.Trace = trace

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// driver holds the view-models a scenario drives.
type driver struct {
	vm        *todo.ViewModel
	rows      []*todo.RowViewModel
	cancels   []func()
	emissions map[string]int
}

// rebuild replaces every row view-model, the way a list view does when the
// set of visible identities changes.
func (rt *driver) rebuild() {
	rt.close()
	rt.rows = todo.Rows(rt.vm)
	rt.cancels = make([]func(), len(rt.rows))
	for i, r := range rt.rows {
		id := r.State().ID
		rt.cancels[i] = r.Subscribe(func(todo.Item) { rt.emissions[id]++ })
	}
}

func (rt *driver) close() {
	for _, cancel := range rt.cancels {
		cancel()
	}
	for _, r := range rt.rows {
		r.Close()
	}
	rt.rows, rt.cancels = nil, nil
}

func (rt *driver) row(id string) *todo.RowViewModel {
	for _, r := range rt.rows {
		if r.State().ID == id {
			return r
		}
	}
	return nil
}

func (rt *driver) step(step Step, prov action.Provenance) error {
	switch {
	case step.Dispatch != nil:
		rt.vm.Dispatch(*step.Dispatch, prov)

	case step.Row != nil:
		r := rt.row(step.Row.ID)
		if r == nil {
			return fmt.Errorf("no row for item %q", step.Row.ID)
		}
		r.Dispatch(todo.RowAction{Kind: step.Row.Kind, Text: step.Row.Text}, prov)

	case step.Draft != nil:
		todo.DraftBinding(rt.vm, prov).Write(*step.Draft)

	case step.Pop:
		link, ok := todo.DetailLink(rt.vm, producer.Empty[todo.Detail, string](), prov)
		if !ok {
			return fmt.Errorf("pop: no detail is presented")
		}
		link.Binding.Write(nil)

	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

func visibleIDs(s todo.State) []string {
	visible := s.Visible()
	ids := make([]string, len(visible))
	for i, it := range visible {
		ids[i] = it.ID
	}
	return ids
}

// readTrace converts the journaled records of session into trace events.
func readTrace(ctx context.Context, j *journal.Journal, session string) ([]TraceEvent, error) {
	records, err := j.Read(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	trace := make([]TraceEvent, 0, len(records))
	for _, r := range records {
		var act todo.Action
		if err := json.Unmarshal(r.Payload, &act); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", r.Seq, err)
		}
		trace = append(trace, TraceEvent{
			Seq:    r.Seq,
			Kind:   act.Kind,
			Action: act.String(),
			Info:   r.Provenance.Info,
		})
	}
	return trace, nil
}
