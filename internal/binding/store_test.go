package binding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/loop"
	"github.com/roach88/projector/internal/store"
	"github.com/roach88/projector/internal/testutil"
	"github.com/roach88/projector/internal/viewmodel"
)

type formState struct {
	Draft   string
	Enabled bool
}

type formAction struct {
	Kind string
	Text string
}

func reduceForm(s formState, a formAction) formState {
	switch a.Kind {
	case "draft":
		s.Draft = a.Text
	case "enable":
		s.Enabled = true
	}
	return s
}

func inlineViewModel(t *testing.T, initial formState) *viewmodel.ViewModel[formAction, formState] {
	t.Helper()
	st := store.New(initial, reduceForm, loop.NewInline())
	return viewmodel.New[formAction, formState](st)
}

func draftAction(v string) (formAction, bool) {
	return formAction{Kind: "draft", Text: v}, true
}

func TestFromViewModel_WriteDispatches(t *testing.T) {
	vm := inlineViewModel(t, formState{Draft: "x"})
	b := FromViewModel(vm, func(s formState) string { return s.Draft }, draftAction, action.Here("draft field"))

	assert.Equal(t, "x", b.Read())
	b.Write("hello")

	assert.Equal(t, "hello", vm.State().Draft)
	assert.Equal(t, "hello", b.Read())
}

func TestFromViewModel_NoActionIsCacheOnly(t *testing.T) {
	vm := inlineViewModel(t, formState{Draft: "x"})
	var dispatched int
	vm.Subscribe(func(formState) { dispatched++ })

	b := FromViewModel(vm,
		func(s formState) string { return s.Draft },
		func(string) (formAction, bool) { return formAction{}, false },
		action.Provenance{},
	)

	b.Write("local")
	assert.Equal(t, "local", b.Read())
	assert.Equal(t, "x", vm.State().Draft)
	assert.Zero(t, dispatched)
}

func TestFromViewModel_ReadAfterWriteBeforeStoreApplies(t *testing.T) {
	l := loop.New()
	st := store.New(formState{Draft: "old"}, reduceForm, loop.Executor(l))
	vm := viewmodel.New[formAction, formState](st)
	b := FromViewModel(vm, func(s formState) string { return s.Draft }, draftAction,
		action.Here("text field"), ReconcileComparable[string]())

	// The loop is not running yet: the dispatch is queued, not applied.
	b.Write("new")
	assert.Equal(t, "old", vm.State().Draft)
	assert.Equal(t, "new", b.Read(), "no flicker back to the pre-dispatch value")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	require.True(t, l.Flush(ctx))

	assert.Equal(t, "new", vm.State().Draft)
	assert.Equal(t, "new", b.Read())
	_, has := b.Cached()
	assert.False(t, has)

	l.Stop()
	require.NoError(t, <-done)
}

func TestFromViewModel_StickyCacheIgnoresLaterStoreValues(t *testing.T) {
	exec := &testutil.ManualExecutor{}
	st := store.New(formState{Draft: "a"}, reduceForm, exec)
	vm := viewmodel.New[formAction, formState](st)
	b := FromViewModel(vm, func(s formState) string { return s.Draft }, draftAction, action.Here("sticky field"))

	b.Write("b")
	b.Write("c")
	assert.Equal(t, 2, exec.Pending())
	assert.Equal(t, "c", b.Read())

	exec.RunAll()
	assert.Equal(t, "c", vm.State().Draft)

	st.Dispatch(formAction{Kind: "draft", Text: "z"}, action.Here("elsewhere"))
	exec.RunAll()
	assert.Equal(t, "z", vm.State().Draft)
	assert.Equal(t, "c", b.Read(), "without reconcile the last write wins locally")
}

func TestFromViewModel_StoreDropsUpdate(t *testing.T) {
	st := store.New(formState{Draft: "old"}, func(s formState, a formAction) formState {
		panic("reducer failure")
	}, loop.NewInline())
	vm := viewmodel.New[formAction, formState](st)
	b := FromViewModel(vm, func(s formState) string { return s.Draft }, draftAction, action.Provenance{})

	b.Write("typed")
	assert.Equal(t, "typed", b.Read(), "binding stays usable on its cache alone")
	assert.Equal(t, "old", vm.State().Draft)
}

func TestFromAction(t *testing.T) {
	vm := inlineViewModel(t, formState{})
	b := FromAction(vm, func(s formState) bool { return s.Enabled },
		func(bool) formAction { return formAction{Kind: "enable"} }, action.Provenance{})

	b.Write(true)
	assert.True(t, vm.State().Enabled)
}

func TestReadOnly_IgnoresWrites(t *testing.T) {
	vm := inlineViewModel(t, formState{Draft: "fixed"})
	b := ReadOnly(vm, func(s formState) string { return s.Draft })

	b.Write("ignored")
	assert.Equal(t, "fixed", b.Read())
	_, has := b.Cached()
	assert.False(t, has)
}
