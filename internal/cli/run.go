package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/projector/internal/config"
	"github.com/roach88/projector/internal/journal"
	"github.com/roach88/projector/internal/loop"
	"github.com/roach88/projector/internal/store"
	"github.com/roach88/projector/internal/todo"
	"github.com/roach88/projector/internal/tui"
	"github.com/roach88/projector/internal/viewmodel"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	Database string
	Session  string

	// SessionGenerator allows overriding the session token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	SessionGenerator journal.SessionGenerator

	// ProgramOptions are passed to the bubbletea program (for testing).
	ProgramOptions []tea.ProgramOption
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the todo list",
		Long: `Run the interactive todo list.

The list starts from the config's items (or from a journaled session when
--session is given) and every dispatch is written to the SQLite journal.

Example:
  projector run
  projector run --config list.cue --db ./projector.db
  projector run --db ./projector.db --session 0190c2c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "config file (.cue or .yaml)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (overrides config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "resume a journaled session (overrides config)")

	return cmd
}

func runApp(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Journal = opts.Database
	}
	if opts.Session != "" {
		cfg.Session = opts.Session
	}

	configureLogging(cmd.ErrOrStderr(), cfg.Level(), opts.Verbose)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("opening journal", "path", cfg.Journal)
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	initial := cfg.InitialState()
	var rec *journal.Recorder
	var lastSeq int64
	if cfg.Session != "" {
		resumed, err := replaySession(ctx, j, cfg.Session, initial)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resume session", err)
		}
		initial = resumed.State
		if lastSeq, err = j.LastSeq(ctx, cfg.Session); err != nil {
			return WrapExitError(ExitCommandError, "failed to resume session", err)
		}
		rec = journal.NewRecorderForSession(j, cfg.Session)
		slog.Info("session resumed", "session", cfg.Session, "records", resumed.Records, "last_seq", lastSeq)
	} else {
		gen := opts.SessionGenerator
		if gen == nil {
			gen = journal.UUIDv7Generator{}
		}
		rec = journal.NewRecorder(j, gen)
		slog.Info("session started", "session", rec.Session())
	}

	// Journal writes run on their own loop so SQLite never blocks Update.
	writer := loop.New()
	exec := tui.NewExecutor()
	st := store.New(initial, todo.Reduce, exec,
		store.WithClock[todo.Action, todo.State](loop.NewClockAt(lastSeq)),
		store.WithObserver[todo.Action, todo.State](func(d store.Dispatched[todo.Action]) {
			if !writer.Post(func() { rec.Record(ctx, d.Action, d.Provenance, d.Seq) }) {
				slog.Warn("journal writer stopped, dispatch not journaled", "seq", d.Seq)
			}
		}),
	)
	vm := viewmodel.New[todo.Action, todo.State](st)
	defer vm.Close()
	m := tui.New(vm, exec)
	defer m.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writer.Run(gctx)
	})
	g.Go(func() error {
		// Stop lets the writer drain what the session dispatched.
		defer writer.Stop()
		return tui.Run(gctx, m, opts.ProgramOptions...)
	})

	err = g.Wait()
	if n := rec.Failures(); n > 0 {
		slog.Warn("some dispatches were not journaled", "session", rec.Session(), "failures", n)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "todo list error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session %s: %d dispatches\n", rec.Session(), st.Seq()-lastSeq)
	return nil
}
