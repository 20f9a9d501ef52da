package todo

import (
	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/binding"
	"github.com/roach88/projector/internal/navigation"
	"github.com/roach88/projector/internal/producer"
	"github.com/roach88/projector/internal/rows"
	"github.com/roach88/projector/internal/viewmodel"
)

// ViewModel is the root view-model of the list.
type ViewModel = viewmodel.ViewModel[Action, State]

// RowViewModel is the view-model of one item row.
type RowViewModel = viewmodel.ViewModel[RowAction, Item]

// Header is the derived state shown above the list.
type Header struct {
	Title     string
	Remaining int
	Total     int
	Filter    string
}

// HeaderOf derives the header.
func HeaderOf(s State) Header {
	return Header{Title: s.Title, Remaining: s.Remaining(), Total: len(s.Items), Filter: s.Filter}
}

// HeaderView projects the header, notifying only when it changes.
func HeaderView(vm *ViewModel) *viewmodel.ViewModel[Action, Header] {
	return viewmodel.Focus(vm, HeaderOf, viewmodel.WhenDifferentComparable[Header]())
}

// Rows builds one row view-model per visible item. Row actions are routed to
// the list with the item's id.
func Rows(vm *ViewModel) []*RowViewModel {
	return rows.ByIdentifiable[Action, State, Item, string, RowAction](
		vm,
		State.Visible,
		FromRow,
		func(a, b Item) bool { return a == b },
	)
}

// DraftBinding binds the draft text field.
func DraftBinding(vm *ViewModel, prov action.Provenance) *binding.Binding[string] {
	return binding.FromAction(vm,
		func(s State) string { return s.Draft },
		SetDraft,
		prov,
		binding.ReconcileComparable[string](),
	)
}

// Detail is the context of the detail screen.
type Detail struct {
	Item Item
}

func detailOf(s State) *Detail {
	it := s.SelectedItem()
	if it == nil {
		return nil
	}
	return &Detail{Item: *it}
}

// DetailLink presents the detail screen of the selected item. ok is false
// when nothing is selected.
func DetailLink[V any](vm *ViewModel, content producer.Producer[Detail, V], prov action.Provenance) (navigation.Presentation[Detail, V], bool) {
	return navigation.Link(vm, detailOf, content, prov)
}

// Selection binds the detail selection of the item id.
func Selection(vm *ViewModel, id string, prov action.Provenance) *binding.Binding[*string] {
	return navigation.Selection(vm, id,
		func(s State) *string { return s.Selected },
		Select,
		Pop,
		prov,
	)
}
