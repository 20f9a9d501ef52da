package todo

import (
	"strconv"
	"strings"
)

// idPrefix starts the ids Add generates.
const idPrefix = "item-"

// Item is one entry of the list.
type Item struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

// RowID identifies the item in row factories.
func (i Item) RowID() string {
	return i.ID
}

// State is the whole application state.
type State struct {
	Title    string  `json:"title"`
	Items    []Item  `json:"items"`
	Draft    string  `json:"draft"`
	Selected *string `json:"selected,omitempty"`
	Filter   string  `json:"filter"`
	// NextID numbers items created by Add.
	NextID int `json:"next_id"`
}

// NewState returns the initial state for a list.
func NewState(title string, items ...Item) State {
	s := State{Title: title, Items: append([]Item{}, items...)}
	s.NextID = len(items) + 1
	for _, it := range items {
		if n, ok := generatedNumber(it.ID); ok && n >= s.NextID {
			s.NextID = n + 1
		}
	}
	return s
}

// generatedNumber returns N for ids of the form "item-N".
func generatedNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Visible returns the items matching the filter (case-insensitive substring).
func (s State) Visible() []Item {
	if s.Filter == "" {
		return s.Items
	}
	needle := strings.ToLower(s.Filter)
	out := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if strings.Contains(strings.ToLower(it.Text), needle) {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the item with id.
func (s State) Find(id string) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// SelectedItem returns the selected item, if it still exists.
func (s State) SelectedItem() *Item {
	if s.Selected == nil {
		return nil
	}
	it, ok := s.Find(*s.Selected)
	if !ok {
		return nil
	}
	return &it
}

// Remaining counts items not done.
func (s State) Remaining() int {
	n := 0
	for _, it := range s.Items {
		if !it.Done {
			n++
		}
	}
	return n
}
