package todo

import "fmt"

// Action kinds.
const (
	KindAdd      = "add"
	KindRemove   = "remove"
	KindToggle   = "toggle"
	KindRename   = "rename"
	KindSetDraft = "set_draft"
	KindSelect   = "select"
	KindPop      = "pop"
	KindMove     = "move"
	KindFilter   = "filter"
	KindRow      = "row"
)

// Action is a tagged union of everything the list understands.
// Fields not used by a kind are left zero.
type Action struct {
	Kind  string     `json:"kind" yaml:"kind"`
	ID    string     `json:"id,omitempty" yaml:"id,omitempty"`
	Text  string     `json:"text,omitempty" yaml:"text,omitempty"`
	Index int        `json:"index,omitempty" yaml:"index,omitempty"`
	Row   *RowAction `json:"row,omitempty" yaml:"row,omitempty"`
}

// Add appends an item with text. Empty text adds the current draft.
func Add(text string) Action { return Action{Kind: KindAdd, Text: text} }

// Remove deletes the item with id.
func Remove(id string) Action { return Action{Kind: KindRemove, ID: id} }

// Toggle flips the done flag of the item with id.
func Toggle(id string) Action { return Action{Kind: KindToggle, ID: id} }

// Rename replaces the text of the item with id.
func Rename(id, text string) Action { return Action{Kind: KindRename, ID: id, Text: text} }

// SetDraft replaces the draft text.
func SetDraft(text string) Action { return Action{Kind: KindSetDraft, Text: text} }

// Select opens the detail of the item with id.
func Select(id string) Action { return Action{Kind: KindSelect, ID: id} }

// Pop closes the detail.
func Pop() Action { return Action{Kind: KindPop} }

// Move moves the item with id to index.
func Move(id string, index int) Action { return Action{Kind: KindMove, ID: id, Index: index} }

// Filter sets the filter text.
func Filter(text string) Action { return Action{Kind: KindFilter, Text: text} }

// Row wraps a row action for the item id.
func Row(id string, ra RowAction) Action {
	return Action{Kind: KindRow, ID: id, Row: &ra}
}

// PopAction is the action dispatched when the platform closes the detail.
func (Action) PopAction() Action { return Pop() }

// String renders the action for traces.
func (a Action) String() string {
	switch a.Kind {
	case KindAdd, KindSetDraft, KindFilter:
		return fmt.Sprintf("%s(%q)", a.Kind, a.Text)
	case KindRemove, KindToggle, KindSelect:
		return fmt.Sprintf("%s(%s)", a.Kind, a.ID)
	case KindRename:
		return fmt.Sprintf("%s(%s, %q)", a.Kind, a.ID, a.Text)
	case KindMove:
		return fmt.Sprintf("%s(%s, %d)", a.Kind, a.ID, a.Index)
	case KindRow:
		if a.Row != nil {
			return fmt.Sprintf("row(%s, %s)", a.ID, a.Row)
		}
		return fmt.Sprintf("row(%s)", a.ID)
	default:
		return a.Kind
	}
}

// Row action kinds.
const (
	RowToggle = "toggle"
	RowRename = "rename"
	RowRemove = "remove"
)

// RowAction is an action scoped to one item.
type RowAction struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

func (r RowAction) String() string {
	if r.Text != "" {
		return fmt.Sprintf("%s %q", r.Kind, r.Text)
	}
	return r.Kind
}

// FromRow lifts a row action into a list action for the item id.
// Unknown row kinds do not map.
func FromRow(id string, ra RowAction) (Action, bool) {
	switch ra.Kind {
	case RowToggle:
		return Toggle(id), true
	case RowRename:
		return Rename(id, ra.Text), true
	case RowRemove:
		return Remove(id), true
	default:
		return Action{}, false
	}
}

// Validate reports malformed actions, for scenario and replay input.
func (a Action) Validate() error {
	switch a.Kind {
	case KindAdd, KindSetDraft, KindPop, KindFilter:
		return nil
	case KindRemove, KindToggle, KindRename, KindSelect:
		if a.ID == "" {
			return fmt.Errorf("%s: id is required", a.Kind)
		}
		return nil
	case KindMove:
		if a.ID == "" {
			return fmt.Errorf("move: id is required")
		}
		if a.Index < 0 {
			return fmt.Errorf("move: index must be >= 0, got %d", a.Index)
		}
		return nil
	case KindRow:
		if a.ID == "" || a.Row == nil {
			return fmt.Errorf("row: id and row are required")
		}
		if _, ok := FromRow(a.ID, *a.Row); !ok {
			return fmt.Errorf("row: unknown row kind %q", a.Row.Kind)
		}
		return nil
	case "":
		return fmt.Errorf("action kind is required")
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}
