package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/config"
	"github.com/roach88/projector/internal/journal"
	"github.com/roach88/projector/internal/loop"
	"github.com/roach88/projector/internal/store"
	"github.com/roach88/projector/internal/todo"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Config   string
	Database string
	Session  string
}

// ReplayResult holds the outcome of re-reducing one session.
type ReplayResult struct {
	Session string     `json:"session"`
	Records int        `json:"records"`
	Applied int64      `json:"applied"`
	Skipped int        `json:"skipped"`
	LastSeq int64      `json:"last_seq"`
	State   todo.State `json:"state"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-reduce a journaled session",
		Long: `Re-reduce the todo actions recorded for a session, starting from the
initial list of the config, and print the resulting state.

Records that do not decode into a valid todo action are skipped and counted.

Exit codes:
  0 - Session replayed
  2 - Command error (database not found, unknown session, etc.)

Examples:
  projector replay --db ./projector.db --session 0190c2c4-...
  projector replay --db ./projector.db --session 0190c2c4-... --config list.cue
  projector replay --db ./projector.db --session 0190c2c4-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to replay (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Config, "config", "", "config file with the initial list (.cue or .yaml)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	result, err := replaySession(ctx, j, opts.Session, cfg.InitialState())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay session", err)
	}
	if result.Records == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no records found for session: %s", opts.Session))
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result)
}

// openExistingJournal opens a journal file that must already exist.
func openExistingJournal(path string) (*journal.Journal, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path), err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return j, nil
}

// todoActionType is the journal type name of todo actions.
var todoActionType = action.TypeName(todo.Action{})

// replaySession re-reduces the todo actions recorded for session from
// initial. The reduction runs on its own loop, the way the live store runs,
// and the records are fed in journal order.
func replaySession(ctx context.Context, j *journal.Journal, session string, initial todo.State) (ReplayResult, error) {
	records, err := j.ReadType(ctx, session, todoActionType)
	if err != nil {
		return ReplayResult{}, err
	}

	result := ReplayResult{Session: session, Records: len(records)}

	l := loop.New()
	st := store.New(initial, todo.Reduce, l)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.Run(gctx)
	})
	g.Go(func() error {
		defer l.Stop()
		for _, rec := range records {
			var act todo.Action
			if err := json.Unmarshal(rec.Payload, &act); err != nil {
				result.Skipped++
				slog.Warn("replay skipped undecodable record", "seq", rec.Seq, "id", rec.ID, "error", err)
				continue
			}
			if err := act.Validate(); err != nil {
				result.Skipped++
				slog.Warn("replay skipped invalid action", "seq", rec.Seq, "id", rec.ID, "error", err)
				continue
			}
			st.Dispatch(act, rec.Provenance)
			result.LastSeq = rec.Seq
		}
		if !l.Flush(gctx) {
			return errors.New("replay loop stopped before all records were applied")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ReplayResult{}, err
	}

	result.Applied = st.Seq()
	result.State = st.State()
	slog.Debug("session replayed",
		"session", session,
		"records", result.Records,
		"applied", result.Applied,
		"skipped", result.Skipped,
	)
	return result, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	return writeOK(cmd.OutOrStdout(), result)
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session: %s\n", result.Session)
	fmt.Fprintf(w, "Records: %d (applied %d, skipped %d, last seq %d)\n",
		result.Records, result.Applied, result.Skipped, result.LastSeq)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s (%d remaining)\n", result.State.Title, result.State.Remaining())
	for _, it := range result.State.Items {
		mark := " "
		if it.Done {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s  %s\n", mark, it.ID, it.Text)
	}
	if result.State.Draft != "" {
		fmt.Fprintf(w, "Draft: %s\n", result.State.Draft)
	}
	if it := result.State.SelectedItem(); it != nil {
		fmt.Fprintf(w, "Selected: %s\n", it.ID)
	}
	return nil
}
