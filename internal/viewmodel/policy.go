package viewmodel

import (
	"log/slog"

	"github.com/google/go-cmp/cmp"
)

// EmitPolicy decides whether a state update notifies subscribers.
// The zero value is Always.
type EmitPolicy[S any] struct {
	name string
	eq   func(a, b S) bool
}

// Always notifies on every parent update.
func Always[S any]() EmitPolicy[S] {
	return EmitPolicy[S]{name: "always"}
}

// WhenDifferent notifies only when eq reports the previous and next derived
// states as unequal.
func WhenDifferent[S any](eq func(a, b S) bool) EmitPolicy[S] {
	if eq == nil {
		return Always[S]()
	}
	return EmitPolicy[S]{name: "when_different", eq: eq}
}

// WhenDifferentComparable is WhenDifferent using ==.
func WhenDifferentComparable[S comparable]() EmitPolicy[S] {
	return EmitPolicy[S]{
		name: "when_different(==)",
		eq:   func(a, b S) bool { return a == b },
	}
}

// WhenDifferentDeep is WhenDifferent using cmp.Equal, which honours Equal
// methods on the compared values. cmp panics on unexported fields; such
// states are treated as always different.
func WhenDifferentDeep[S any](opts ...cmp.Option) EmitPolicy[S] {
	return EmitPolicy[S]{
		name: "when_different(cmp)",
		eq:   func(a, b S) bool { return cmp.Equal(a, b, opts...) },
	}
}

// ShouldEmit reports whether moving from prev to next notifies subscribers.
// A panicking equality counts as "different".
func (p EmitPolicy[S]) ShouldEmit(prev, next S) (emit bool) {
	if p.eq == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("emit policy equality panicked, notifying",
				"policy", p.String(),
				"panic", r,
			)
			emit = true
		}
	}()
	return !p.eq(prev, next)
}

// String returns the policy name.
func (p EmitPolicy[S]) String() string {
	if p.name == "" {
		return "always"
	}
	return p.name
}
