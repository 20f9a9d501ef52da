package journal

import (
	"path/filepath"
	"testing"

	"github.com/roach88/projector/internal/action"
)

// createTestJournal creates a new journal in a temp directory for testing.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

type testAction struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// createTestRecord builds a record for a testAction at the given seq.
func createTestRecord(t *testing.T, session string, seq int64, kind string) action.Record {
	t.Helper()
	rec, err := action.NewRecord(session, seq, testAction{Kind: kind}, action.Provenance{
		File:     "view.go",
		Function: "todo.Row",
		Line:     int(seq),
		Info:     kind,
	})
	if err != nil {
		t.Fatalf("NewRecord() failed: %v", err)
	}
	return rec
}
