package harness

import "github.com/roach88/projector/internal/todo"

// TraceEvent is one journaled dispatch.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Kind   string `json:"kind"`
	Action string `json:"action"`
	Info   string `json:"info,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step ran and every assertion held.
	Pass bool `json:"pass"`

	// Trace lists the journaled dispatches in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// State is the final store state.
	State todo.State `json:"state"`

	// RowEmissions counts row notifications per item id.
	RowEmissions map[string]int `json:"row_emissions"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:         true,
		Trace:        []TraceEvent{},
		Errors:       []string{},
		RowEmissions: make(map[string]int),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
