package rows

// Indexed pairs an element with its position.
type Indexed[E any] struct {
	Index int
	Elem  E
}

// Enumerate pairs every element of items with its index.
func Enumerate[E any](items []E) []Indexed[E] {
	out := make([]Indexed[E], len(items))
	for i, e := range items {
		out[i] = Indexed[E]{Index: i, Elem: e}
	}
	return out
}

// RowID makes an Indexed element identifiable by its position.
func (ix Indexed[E]) RowID() int {
	return ix.Index
}
