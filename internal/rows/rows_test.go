package rows

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/loop"
	"github.com/roach88/projector/internal/store"
	"github.com/roach88/projector/internal/viewmodel"
)

type task struct {
	ID   string
	Name string
	Done bool
}

func (t task) RowID() string { return t.ID }

type listState struct {
	Tasks []task
	Other int
}

type listAction struct {
	Kind  string
	ID    string
	Index int
	Name  string
}

type rowAction struct {
	Kind string
	Name string
}

func reduceList(s listState, a listAction) listState {
	next := listState{Other: s.Other, Tasks: append([]task(nil), s.Tasks...)}
	switch a.Kind {
	case "toggle":
		for i := range next.Tasks {
			if next.Tasks[i].ID == a.ID {
				next.Tasks[i].Done = !next.Tasks[i].Done
			}
		}
	case "rename-at":
		if a.Index < len(next.Tasks) {
			next.Tasks[a.Index].Name = a.Name
		}
	case "other":
		next.Other++
	case "remove":
		kept := next.Tasks[:0]
		for _, t := range next.Tasks {
			if t.ID != a.ID {
				kept = append(kept, t)
			}
		}
		next.Tasks = kept
	case "reverse":
		for i, j := 0, len(next.Tasks)-1; i < j; i, j = i+1, j-1 {
			next.Tasks[i], next.Tasks[j] = next.Tasks[j], next.Tasks[i]
		}
	}
	return next
}

func tasksOf(s listState) []task { return s.Tasks }

func toParentByID(id string, ra rowAction) (listAction, bool) {
	switch ra.Kind {
	case "toggle":
		return listAction{Kind: "toggle", ID: id}, true
	case "remove":
		return listAction{Kind: "remove", ID: id}, true
	}
	return listAction{}, false
}

func newList(t *testing.T, tasks ...task) (*store.Store[listAction, listState], *viewmodel.ViewModel[listAction, listState]) {
	t.Helper()
	st := store.New(listState{Tasks: tasks}, reduceList, loop.NewInline())
	return st, viewmodel.New[listAction, listState](st)
}

func countNotifications[RA, E any](rows []*viewmodel.ViewModel[RA, E]) []*int {
	counts := make([]*int, len(rows))
	for i, r := range rows {
		n := new(int)
		counts[i] = n
		r.Subscribe(func(E) { *n++ })
	}
	return counts
}

func TestByIdentifiable_OrderAndInitialState(t *testing.T) {
	_, vm := newList(t, task{ID: "a", Name: "A"}, task{ID: "b", Name: "B"}, task{ID: "c", Name: "C"})

	rows := ByIdentifiable[listAction, listState, task, string, rowAction](vm, tasksOf, toParentByID, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, IDs(rows, task.RowID))
	assert.Equal(t, task{ID: "b", Name: "B"}, rows[1].State())
}

func TestByID_EmptyCollection(t *testing.T) {
	_, vm := newList(t)
	calls := 0
	rows := ByID(vm, tasksOf, func(e task) string { calls++; return e.ID }, toParentByID, nil)

	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Zero(t, calls)
}

func TestByID_RowDispatchRoutesWithID(t *testing.T) {
	var seen []store.Dispatched[listAction]
	st := store.New(listState{Tasks: []task{{ID: "a"}, {ID: "b"}}}, reduceList, loop.NewInline(),
		store.WithObserver[listAction, listState](func(d store.Dispatched[listAction]) { seen = append(seen, d) }))
	vm := viewmodel.New[listAction, listState](st)

	rows := ByIDComparable(vm, tasksOf, task.RowID, toParentByID)
	prov := action.Here("row toggle")
	rows[1].Dispatch(rowAction{Kind: "toggle"}, prov)

	require.Len(t, seen, 1)
	assert.Equal(t, listAction{Kind: "toggle", ID: "b"}, seen[0].Action)
	assert.Equal(t, prov, seen[0].Provenance)
	assert.True(t, st.State().Tasks[1].Done)
	assert.True(t, rows[1].State().Done)
}

func TestByID_UnmappedRowActionDropped(t *testing.T) {
	st, vm := newList(t, task{ID: "a"})
	rows := ByIDComparable(vm, tasksOf, task.RowID, toParentByID)

	rows[0].Dispatch(rowAction{Kind: "unknown"}, action.Provenance{})
	assert.Zero(t, st.Seq())
}

func TestByID_OnlyChangedRowNotifies(t *testing.T) {
	st, vm := newList(t, task{ID: "a"}, task{ID: "b"}, task{ID: "c"})
	rows := ByIDComparable(vm, tasksOf, task.RowID, toParentByID)
	counts := countNotifications(rows)

	st.Dispatch(listAction{Kind: "toggle", ID: "b"}, action.Provenance{})

	assert.Equal(t, 0, *counts[0])
	assert.Equal(t, 1, *counts[1])
	assert.Equal(t, 0, *counts[2])

	st.Dispatch(listAction{Kind: "other"}, action.Provenance{})
	assert.Equal(t, 0, *counts[0])
	assert.Equal(t, 1, *counts[1])
	assert.Equal(t, 0, *counts[2])
	runtime.KeepAlive(rows)
}

func TestByID_FollowsElementAcrossReorder(t *testing.T) {
	st, vm := newList(t, task{ID: "a", Name: "A"}, task{ID: "b", Name: "B"})
	rows := ByIDComparable(vm, tasksOf, task.RowID, toParentByID)
	counts := countNotifications(rows)

	st.Dispatch(listAction{Kind: "reverse"}, action.Provenance{})

	assert.Equal(t, "A", rows[0].State().Name)
	assert.Equal(t, "B", rows[1].State().Name)
	assert.Zero(t, *counts[0], "moved but unchanged element must not notify")
	assert.Zero(t, *counts[1])
}

func TestByID_RemovedElementKeepsLastState(t *testing.T) {
	st, vm := newList(t, task{ID: "a", Name: "A"}, task{ID: "b", Name: "B"})
	rows := ByIDComparable(vm, tasksOf, task.RowID, toParentByID)

	rows[0].Dispatch(rowAction{Kind: "remove"}, action.Here("swipe"))

	assert.Len(t, st.State().Tasks, 1)
	assert.Equal(t, task{ID: "a", Name: "A"}, rows[0].State())
	assert.Equal(t, task{ID: "b", Name: "B"}, rows[1].State())
}

func TestByID_DuplicateIDsResolveOwnPosition(t *testing.T) {
	st, vm := newList(t, task{ID: "dup", Name: "first"}, task{ID: "dup", Name: "second"})
	rows := ByIDComparable(vm, tasksOf, task.RowID, toParentByID)

	require.Len(t, rows, 2)
	assert.Equal(t, "first", rows[0].State().Name)
	assert.Equal(t, "second", rows[1].State().Name)

	st.Dispatch(listAction{Kind: "other"}, action.Provenance{})
	assert.Equal(t, "first", rows[0].State().Name)
	assert.Equal(t, "second", rows[1].State().Name)
}

func TestByIndex_TagsWithPosition(t *testing.T) {
	var seen []listAction
	st := store.New(listState{Tasks: []task{{ID: "a"}, {ID: "b"}}}, reduceList, loop.NewInline(),
		store.WithObserver[listAction, listState](func(d store.Dispatched[listAction]) { seen = append(seen, d.Action) }))
	vm := viewmodel.New[listAction, listState](st)

	rows := ByIndexComparable(vm, tasksOf, func(i int, ra rowAction) (listAction, bool) {
		return listAction{Kind: "rename-at", Index: i, Name: ra.Name}, true
	})
	rows[1].Dispatch(rowAction{Name: "renamed"}, action.Provenance{})

	assert.Equal(t, []listAction{{Kind: "rename-at", Index: 1, Name: "renamed"}}, seen)
	assert.Equal(t, "renamed", rows[1].State().Name)
	assert.Equal(t, "", rows[0].State().Name)
	assert.Equal(t, "renamed", st.State().Tasks[1].Name)
}

func TestByIndex_AddressesCurrentElementAtPosition(t *testing.T) {
	st, vm := newList(t, task{ID: "a"}, task{ID: "b"})
	rows := ByIndexComparable(vm, tasksOf, func(int, rowAction) (listAction, bool) {
		return listAction{}, false
	})

	st.Dispatch(listAction{Kind: "reverse"}, action.Provenance{})
	assert.Equal(t, "b", rows[0].State().ID)

	st.Dispatch(listAction{Kind: "remove", ID: "a"}, action.Provenance{})
	assert.Equal(t, "a", rows[1].State().ID, "out-of-range row keeps its last element")
}

func TestByIndex_EmptyCollection(t *testing.T) {
	_, vm := newList(t)
	rows := ByIndex(vm, tasksOf, func(int, rowAction) (listAction, bool) { return listAction{}, false }, nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestEnumerate(t *testing.T) {
	got := Enumerate([]string{"x", "y"})
	assert.Equal(t, []Indexed[string]{{Index: 0, Elem: "x"}, {Index: 1, Elem: "y"}}, got)
	assert.Equal(t, 1, got[1].RowID())
	assert.Empty(t, Enumerate[int](nil))
}
