package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/journal"
	"github.com/roach88/projector/internal/todo"
)

// seedJournal creates a journal file holding acts as one session.
func seedJournal(t *testing.T, session string, acts ...todo.Action) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	rec := journal.NewRecorderForSession(j, session)
	for i, act := range acts {
		rec.Record(context.Background(), act, action.Provenance{File: "seed.go", Line: i + 1, Info: act.Kind}, int64(i+1))
	}
	require.Zero(t, rec.Failures())
	return path
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
