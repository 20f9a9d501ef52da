package todo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() State {
	return NewState("Groceries",
		Item{ID: "item-1", Text: "milk"},
		Item{ID: "item-2", Text: "bread"},
		Item{ID: "item-3", Text: "Eggs"},
	)
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestReduce_Add(t *testing.T) {
	s := Reduce(sample(), Add("  butter "))
	require.Len(t, s.Items, 4)
	assert.Equal(t, Item{ID: "item-4", Text: "butter"}, s.Items[3])
	assert.Equal(t, 5, s.NextID)
}

func TestNewState_NextIDSkipsSeededIDs(t *testing.T) {
	s := NewState("t", Item{ID: "item-3", Text: "a"}, Item{ID: "b", Text: "b"})
	assert.Equal(t, 4, s.NextID)

	s = Reduce(s, Add("new"))
	assert.Equal(t, []string{"item-3", "b", "item-4"}, ids(s.Items))
}

func TestReduce_AddNeverReusesAnExistingID(t *testing.T) {
	s := State{Title: "t", Items: []Item{{ID: "item-1"}, {ID: "item-2"}}, NextID: 1}

	s = Reduce(s, Add("x"))
	s = Reduce(s, Add("y"))
	assert.Equal(t, []string{"item-1", "item-2", "item-3", "item-4"}, ids(s.Items))
	assert.Equal(t, 5, s.NextID)
}

func TestReduce_AddUsesDraft(t *testing.T) {
	s := sample()
	s.Draft = "jam"
	s = Reduce(s, Add(""))

	assert.Equal(t, "jam", s.Items[3].Text)
	assert.Empty(t, s.Draft)
}

func TestReduce_AddEmptyIsNoop(t *testing.T) {
	before := sample()
	after := Reduce(before, Add("   "))
	assert.Equal(t, before, after)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := sample()
	_ = Reduce(before, Toggle("item-1"))
	assert.False(t, before.Items[0].Done)
}

func TestReduce_RemoveClearsSelection(t *testing.T) {
	s := Reduce(sample(), Select("item-2"))
	require.NotNil(t, s.Selected)

	s = Reduce(s, Remove("item-2"))
	assert.Equal(t, []string{"item-1", "item-3"}, ids(s.Items))
	assert.Nil(t, s.Selected)
}

func TestReduce_ToggleAndRename(t *testing.T) {
	s := Reduce(sample(), Toggle("item-3"))
	s = Reduce(s, Rename("item-3", "eggs (12)"))
	assert.Equal(t, Item{ID: "item-3", Text: "eggs (12)", Done: true}, s.Items[2])
	assert.Equal(t, 2, s.Remaining())
}

func TestReduce_SelectUnknownIsNoop(t *testing.T) {
	s := Reduce(sample(), Select("missing"))
	assert.Nil(t, s.Selected)
}

func TestReduce_Pop(t *testing.T) {
	s := Reduce(Reduce(sample(), Select("item-1")), Pop())
	assert.Nil(t, s.Selected)
}

func TestReduce_Move(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		index int
		want  []string
	}{
		{"to front", "item-3", 0, []string{"item-3", "item-1", "item-2"}},
		{"to back", "item-1", 2, []string{"item-2", "item-3", "item-1"}},
		{"past end clamps", "item-1", 99, []string{"item-2", "item-3", "item-1"}},
		{"negative clamps", "item-2", -4, []string{"item-2", "item-1", "item-3"}},
		{"unknown id", "nope", 0, []string{"item-1", "item-2", "item-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Reduce(sample(), Move(tt.id, tt.index))
			assert.Equal(t, tt.want, ids(s.Items))
		})
	}
}

func TestReduce_FilterAndVisible(t *testing.T) {
	s := Reduce(sample(), Filter("E"))
	assert.Equal(t, []string{"item-2", "item-3"}, ids(s.Visible()))
	assert.Len(t, s.Items, 3)
}

func TestReduce_RowActions(t *testing.T) {
	s := Reduce(sample(), Row("item-1", RowAction{Kind: RowRename, Text: "oat milk"}))
	assert.Equal(t, "oat milk", s.Items[0].Text)

	before := s
	s = Reduce(s, Row("item-1", RowAction{Kind: "wiggle"}))
	assert.Equal(t, before, s)
}

func TestReduce_UnknownKind(t *testing.T) {
	before := sample()
	assert.Equal(t, before, Reduce(before, Action{Kind: "dance"}))
}

func TestFromRow(t *testing.T) {
	a, ok := FromRow("x", RowAction{Kind: RowToggle})
	assert.True(t, ok)
	assert.Equal(t, Toggle("x"), a)

	a, ok = FromRow("x", RowAction{Kind: RowRemove})
	assert.True(t, ok)
	assert.Equal(t, Remove("x"), a)

	_, ok = FromRow("x", RowAction{Kind: "nope"})
	assert.False(t, ok)
}

func TestAction_PopAction(t *testing.T) {
	assert.Equal(t, Pop(), Action{}.PopAction())
}

func TestAction_JSONRoundTrip(t *testing.T) {
	acts := []Action{Add("a"), Move("item-1", 2), Row("item-2", RowAction{Kind: RowRename, Text: "b"}), Pop()}
	for _, a := range acts {
		data, err := json.Marshal(a)
		require.NoError(t, err)
		var back Action
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, a, back)
	}
}

func TestAction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		act     Action
		wantErr bool
	}{
		{"add", Add("x"), false},
		{"pop", Pop(), false},
		{"toggle without id", Action{Kind: KindToggle}, true},
		{"move negative", Action{Kind: KindMove, ID: "a", Index: -1}, true},
		{"row ok", Row("a", RowAction{Kind: RowToggle}), false},
		{"row unknown", Row("a", RowAction{Kind: "x"}), true},
		{"row missing", Action{Kind: KindRow, ID: "a"}, true},
		{"empty kind", Action{}, true},
		{"unknown kind", Action{Kind: "dance"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.act.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, `add("milk")`, Add("milk").String())
	assert.Equal(t, "toggle(item-1)", Toggle("item-1").String())
	assert.Equal(t, `rename(item-1, "x")`, Rename("item-1", "x").String())
	assert.Equal(t, "move(item-1, 2)", Move("item-1", 2).String())
	assert.Equal(t, `row(item-1, rename "x")`, Row("item-1", RowAction{Kind: RowRename, Text: "x"}).String())
	assert.Equal(t, "pop", Pop().String())
}
