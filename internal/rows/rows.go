package rows

import (
	"log/slog"
	"sync"

	"github.com/roach88/projector/internal/viewmodel"
)

// Identifiable is implemented by elements that carry their own identity.
type Identifiable[ID comparable] interface {
	RowID() ID
}

// ByID builds identity-tagged rows, one per element of collection(parent
// state), in collection order.
//
// A row dispatch calls toParent with the row's id; when it declines, the
// dispatch is dropped. eq drives the rows' WhenDifferent policy; nil means
// Always.
func ByID[PA, PS, E any, ID comparable, RA any](
	parent *viewmodel.ViewModel[PA, PS],
	collection func(PS) []E,
	id func(E) ID,
	toParent func(ID, RA) (PA, bool),
	eq func(a, b E) bool,
) []*viewmodel.ViewModel[RA, E] {
	items := collection(parent.State())
	out := make([]*viewmodel.ViewModel[RA, E], 0, len(items))
	if len(items) == 0 {
		return out
	}

	seen := make(map[ID]int, len(items))
	for _, e := range items {
		seen[id(e)]++
	}
	for rid, n := range seen {
		if n > 1 {
			slog.Warn("duplicate row identity; rows resolve by position first",
				"id", rid,
				"count", n,
				"elements", len(items),
			)
			break
		}
	}

	policy := viewmodel.WhenDifferent(eq)
	for pos, e := range items {
		r := &idResolver[E, ID]{id: id, rid: id(e), pos: pos, last: e}
		rid := r.rid
		out = append(out, viewmodel.Project(parent, viewmodel.Projection[PA, PS, RA, E]{
			State:  func(ps PS) E { return r.resolve(collection(ps)) },
			Action: func(ra RA) (PA, bool) { return toParent(rid, ra) },
		}, policy))
	}
	return out
}

// ByIDComparable is ByID with == as the element equality.
func ByIDComparable[PA, PS any, E comparable, ID comparable, RA any](
	parent *viewmodel.ViewModel[PA, PS],
	collection func(PS) []E,
	id func(E) ID,
	toParent func(ID, RA) (PA, bool),
) []*viewmodel.ViewModel[RA, E] {
	return ByID(parent, collection, id, toParent, func(a, b E) bool { return a == b })
}

// ByIdentifiable is ByID for elements implementing Identifiable.
func ByIdentifiable[PA, PS any, E Identifiable[ID], ID comparable, RA any](
	parent *viewmodel.ViewModel[PA, PS],
	collection func(PS) []E,
	toParent func(ID, RA) (PA, bool),
	eq func(a, b E) bool,
) []*viewmodel.ViewModel[RA, E] {
	return ByID(parent, collection, func(e E) ID { return e.RowID() }, toParent, eq)
}

// ByIndex builds position-tagged rows. A row dispatch calls toParent with the
// row's index at build time.
func ByIndex[PA, PS, E, RA any](
	parent *viewmodel.ViewModel[PA, PS],
	collection func(PS) []E,
	toParent func(int, RA) (PA, bool),
	eq func(a, b E) bool,
) []*viewmodel.ViewModel[RA, E] {
	items := collection(parent.State())
	out := make([]*viewmodel.ViewModel[RA, E], 0, len(items))

	policy := viewmodel.WhenDifferent(eq)
	for i, e := range items {
		r := &indexResolver[E]{index: i, last: e}
		out = append(out, viewmodel.Project(parent, viewmodel.Projection[PA, PS, RA, E]{
			State:  func(ps PS) E { return r.resolve(collection(ps)) },
			Action: func(ra RA) (PA, bool) { return toParent(i, ra) },
		}, policy))
	}
	return out
}

// ByIndexComparable is ByIndex with == as the element equality.
func ByIndexComparable[PA, PS any, E comparable, RA any](
	parent *viewmodel.ViewModel[PA, PS],
	collection func(PS) []E,
	toParent func(int, RA) (PA, bool),
) []*viewmodel.ViewModel[RA, E] {
	return ByIndex(parent, collection, toParent, func(a, b E) bool { return a == b })
}

// IDs returns the identities of rows, in order.
func IDs[RA, E any, ID comparable](rows []*viewmodel.ViewModel[RA, E], id func(E) ID) []ID {
	out := make([]ID, len(rows))
	for i, r := range rows {
		out[i] = id(r.State())
	}
	return out
}

// idResolver finds a row's element in a fresh collection.
type idResolver[E any, ID comparable] struct {
	id  func(E) ID
	rid ID

	mu   sync.Mutex
	pos  int
	last E
}

func (r *idResolver[E, ID]) resolve(items []E) E {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The captured position wins so duplicate ids keep their own element.
	if r.pos < len(items) && r.id(items[r.pos]) == r.rid {
		r.last = items[r.pos]
		return r.last
	}
	for i, e := range items {
		if r.id(e) == r.rid {
			r.pos = i
			r.last = e
			return e
		}
	}
	return r.last
}

type indexResolver[E any] struct {
	index int

	mu   sync.Mutex
	last E
}

func (r *indexResolver[E]) resolve(items []E) E {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index < len(items) {
		r.last = items[r.index]
	}
	return r.last
}
