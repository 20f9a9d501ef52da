package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/projector/internal/todo"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.Info != "" {
			fmt.Fprintf(&buf, "  [%d] %s (%s)\n", event.Seq, event.Action, event.Info)
		} else {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, event.Action)
		}
	}

	return buf.String()
}

func assertFinalItems(result *Result, a Assertion) error {
	// A nil expectation means an empty list.
	if diff := cmp.Diff(a.Items, result.State.Items, cmpopts.EquateEmpty()); diff != "" {
		return &AssertionError{
			Type:     AssertFinalItems,
			Expected: formatItems(a.Items),
			Actual:   formatItems(result.State.Items) + "\n  Diff (-want +got):\n" + diff,
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalDraft(result *Result, a Assertion) error {
	if result.State.Draft != a.Text {
		return &AssertionError{
			Type:     AssertFinalDraft,
			Expected: fmt.Sprintf("%q", a.Text),
			Actual:   fmt.Sprintf("%q", result.State.Draft),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalSelected(result *Result, a Assertion) error {
	got := ""
	if result.State.Selected != nil {
		got = *result.State.Selected
	}
	if got != a.ID {
		return &AssertionError{
			Type:     AssertFinalSelected,
			Expected: describeSelection(a.ID),
			Actual:   describeSelection(got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertDispatchCount(result *Result, a Assertion) error {
	if len(result.Trace) != a.Count {
		return &AssertionError{
			Type:     AssertDispatchCount,
			Expected: fmt.Sprintf("%d dispatches", a.Count),
			Actual:   fmt.Sprintf("%d dispatches", len(result.Trace)),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertRowEmissions(result *Result, a Assertion) error {
	got := result.RowEmissions[a.ID]
	if got != a.Count {
		return &AssertionError{
			Type:     AssertRowEmissions,
			Expected: fmt.Sprintf("row %s notified %d times", a.ID, a.Count),
			Actual:   fmt.Sprintf("row %s notified %d times", a.ID, got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertJournalKinds(result *Result, a Assertion) error {
	got := make([]string, len(result.Trace))
	for i, event := range result.Trace {
		got[i] = event.Kind
	}
	if !slices.Equal(got, a.Kinds) {
		return &AssertionError{
			Type:     AssertJournalKinds,
			Expected: fmt.Sprintf("%v", a.Kinds),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertJournalInfo(result *Result, a Assertion) error {
	got := make([]string, len(result.Trace))
	for i, event := range result.Trace {
		got[i] = event.Info
	}
	if !slices.Equal(got, a.Info) {
		return &AssertionError{
			Type:     AssertJournalInfo,
			Expected: fmt.Sprintf("%q", a.Info),
			Actual:   fmt.Sprintf("%q", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func formatItems(items []todo.Item) string {
	if len(items) == 0 {
		return "[]"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		mark := " "
		if it.Done {
			mark = "x"
		}
		parts[i] = fmt.Sprintf("[%s] %s %q", mark, it.ID, it.Text)
	}
	return strings.Join(parts, ", ")
}

func describeSelection(id string) string {
	if id == "" {
		return "no selection"
	}
	return "selected " + id
}

// EvaluateAssertions runs all assertions against the result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalItems:
			err = assertFinalItems(result, assertion)
		case AssertFinalDraft:
			err = assertFinalDraft(result, assertion)
		case AssertFinalSelected:
			err = assertFinalSelected(result, assertion)
		case AssertDispatchCount:
			err = assertDispatchCount(result, assertion)
		case AssertRowEmissions:
			err = assertRowEmissions(result, assertion)
		case AssertJournalKinds:
			err = assertJournalKinds(result, assertion)
		case AssertJournalInfo:
			err = assertJournalInfo(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
