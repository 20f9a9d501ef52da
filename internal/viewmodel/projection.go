package viewmodel

// Projection maps a parent view-model onto a child one.
//
// State derives the child state and must be pure. Action lifts a child action
// into a parent action; returning false drops the action.
type Projection[PA, PS, CA, CS any] struct {
	State  func(PS) CS
	Action func(CA) (PA, bool)
}

// Identity returns the projection that changes nothing.
func Identity[A, S any]() Projection[A, S, A, S] {
	return Projection[A, S, A, S]{
		State:  func(s S) S { return s },
		Action: func(a A) (A, bool) { return a, true },
	}
}

// StateOnly returns a projection deriving state with fn and forwarding
// actions unchanged.
func StateOnly[A, PS, CS any](fn func(PS) CS) Projection[A, PS, A, CS] {
	return Projection[A, PS, A, CS]{
		State:  fn,
		Action: func(a A) (A, bool) { return a, true },
	}
}

// Compose chains outer (parent to middle) and inner (middle to child).
// A dropped action at either stage drops the whole lift.
func Compose[PA, PS, MA, MS, CA, CS any](
	outer Projection[PA, PS, MA, MS],
	inner Projection[MA, MS, CA, CS],
) Projection[PA, PS, CA, CS] {
	return Projection[PA, PS, CA, CS]{
		State: func(ps PS) CS {
			return inner.State(outer.State(ps))
		},
		Action: func(ca CA) (PA, bool) {
			ma, ok := inner.Action(ca)
			if !ok {
				var zero PA
				return zero, false
			}
			return outer.Action(ma)
		},
	}
}
