package todo

import (
	"strconv"
	"strings"
)

// Reduce applies act to s. It never mutates s; unknown actions return s.
func Reduce(s State, act Action) State {
	next := s
	next.Items = append([]Item(nil), s.Items...)

	switch act.Kind {
	case KindAdd:
		text := strings.TrimSpace(act.Text)
		if text == "" {
			text = strings.TrimSpace(s.Draft)
			next.Draft = ""
		}
		if text == "" {
			return s
		}
		if next.NextID < 1 {
			next.NextID = len(next.Items) + 1
		}
		// Seeded items may already use a generated id.
		for indexOf(next.Items, idPrefix+strconv.Itoa(next.NextID)) >= 0 {
			next.NextID++
		}
		next.Items = append(next.Items, Item{ID: idPrefix + strconv.Itoa(next.NextID), Text: text})
		next.NextID++

	case KindRemove:
		kept := next.Items[:0]
		for _, it := range next.Items {
			if it.ID != act.ID {
				kept = append(kept, it)
			}
		}
		next.Items = kept
		if s.Selected != nil && *s.Selected == act.ID {
			next.Selected = nil
		}

	case KindToggle:
		if i := indexOf(next.Items, act.ID); i >= 0 {
			next.Items[i].Done = !next.Items[i].Done
		}

	case KindRename:
		if i := indexOf(next.Items, act.ID); i >= 0 {
			next.Items[i].Text = act.Text
		}

	case KindSetDraft:
		next.Draft = act.Text

	case KindSelect:
		if indexOf(next.Items, act.ID) < 0 {
			return s
		}
		id := act.ID
		next.Selected = &id

	case KindPop:
		next.Selected = nil

	case KindMove:
		i := indexOf(next.Items, act.ID)
		if i < 0 {
			return s
		}
		it := next.Items[i]
		next.Items = append(next.Items[:i], next.Items[i+1:]...)
		to := min(max(act.Index, 0), len(next.Items))
		next.Items = append(next.Items[:to], append([]Item{it}, next.Items[to:]...)...)

	case KindFilter:
		next.Filter = act.Text

	case KindRow:
		if act.Row == nil {
			return s
		}
		lifted, ok := FromRow(act.ID, *act.Row)
		if !ok {
			return s
		}
		return Reduce(s, lifted)

	default:
		return s
	}
	return next
}

func indexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
