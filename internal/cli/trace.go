package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/projector/internal/action"
	"github.com/roach88/projector/internal/journal"
	"github.com/roach88/projector/internal/todo"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - lists sessions when empty
	Kind     string // optional - filter to one todo action kind
}

// TraceEvent is one journaled dispatch in the trace timeline.
type TraceEvent struct {
	Seq        int64             `json:"seq"`
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Kind       string            `json:"kind,omitempty"`
	Action     string            `json:"action,omitempty"`
	Payload    map[string]any    `json:"payload,omitempty"`
	Provenance action.Provenance `json:"provenance"`
}

// TraceResult holds the trace of one session.
type TraceResult struct {
	Session  string       `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalRecords int            `json:"total_records"`
	Shown        int            `json:"shown"`
	LastSeq      int64          `json:"last_seq"`
	ByKind       map[string]int `json:"by_kind"`
}

// SessionSummary describes one journaled session.
type SessionSummary struct {
	Session string `json:"session"`
	Records int    `json:"records"`
	LastSeq int64  `json:"last_seq"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled dispatches and their provenance",
		Long: `Show the dispatches journaled for a session, in seq order, with the
source location and annotation that produced each one.

Without --session, lists the sessions in the journal.

Examples:
  projector trace --db ./projector.db
  projector trace --db ./projector.db --session 0190c2c4-...
  projector trace --db ./projector.db --session 0190c2c4-... --kind toggle
  projector trace --db ./projector.db --session 0190c2c4-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to a todo action kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	if opts.Session == "" {
		sessions, err := listSessions(ctx, j)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if opts.Format == "json" {
			return outputTraceJSON(cmd, sessions)
		}
		return outputSessionsText(cmd, sessions)
	}

	records, err := j.Read(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	if len(records) == 0 {
		if opts.Format == "json" {
			return outputTraceJSON(cmd, TraceResult{
				Session:  opts.Session,
				Timeline: []TraceEvent{},
				Stats:    TraceStats{ByKind: map[string]int{}},
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No records found for session: %s\n", opts.Session)
		return nil
	}

	result := buildTrace(opts.Session, records, opts.Kind)

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

func listSessions(ctx context.Context, j *journal.Journal) ([]SessionSummary, error) {
	tokens, err := j.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	sessions := make([]SessionSummary, 0, len(tokens))
	for _, token := range tokens {
		count, err := j.Count(ctx, token)
		if err != nil {
			return nil, err
		}
		last, err := j.LastSeq(ctx, token)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, SessionSummary{Session: token, Records: count, LastSeq: last})
	}
	return sessions, nil
}

// buildTrace converts journal records to timeline events. When kindFilter
// is set, only todo actions of that kind are shown; stats still cover every
// record.
func buildTrace(session string, records []action.Record, kindFilter string) TraceResult {
	result := TraceResult{
		Session:  session,
		Timeline: make([]TraceEvent, 0, len(records)),
		Stats: TraceStats{
			TotalRecords: len(records),
			ByKind:       make(map[string]int),
		},
	}

	for _, rec := range records {
		event := TraceEvent{
			Seq:        rec.Seq,
			ID:         rec.ID,
			Type:       rec.Type,
			Provenance: rec.Provenance,
		}

		var payload map[string]any
		if err := json.Unmarshal(rec.Payload, &payload); err == nil {
			event.Payload = payload
		}

		if rec.Type == todoActionType {
			var act todo.Action
			if err := json.Unmarshal(rec.Payload, &act); err == nil {
				event.Kind = act.Kind
				event.Action = act.String()
			}
		}

		result.Stats.LastSeq = max(result.Stats.LastSeq, rec.Seq)
		if event.Kind != "" {
			result.Stats.ByKind[event.Kind]++
		}

		if kindFilter != "" && event.Kind != kindFilter {
			continue
		}
		result.Timeline = append(result.Timeline, event)
	}

	result.Stats.Shown = len(result.Timeline)
	return result
}

// outputTraceJSON outputs data as a JSON envelope.
func outputTraceJSON(cmd *cobra.Command, data any) error {
	return writeOK(cmd.OutOrStdout(), data)
}

func outputSessionsText(cmd *cobra.Command, sessions []SessionSummary) error {
	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}
	fmt.Fprintln(w, "=== Sessions ===")
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s  %d records, last seq %d\n", s.Session, s.Records, s.LastSeq)
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no matching records)")
	} else {
		for _, event := range result.Timeline {
			formatTimelineEvent(w, event, verbose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Records:  %d\n", result.Stats.TotalRecords)
	fmt.Fprintf(w, "  Shown:    %d\n", result.Stats.Shown)
	fmt.Fprintf(w, "  Last Seq: %d\n", result.Stats.LastSeq)
	if len(result.Stats.ByKind) > 0 {
		fmt.Fprintf(w, "  By Kind:  %s\n", formatCounts(result.Stats.ByKind))
	}

	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	label := event.Action
	if label == "" {
		label = event.Type
	}
	fmt.Fprintf(w, "  [%d] %s\n", event.Seq, label)
	if origin := event.Provenance.String(); origin != "" {
		fmt.Fprintf(w, "       From: %s\n", origin)
	}
	if verbose {
		if len(event.Payload) > 0 {
			fmt.Fprintf(w, "       Payload: %s\n", formatArgs(event.Payload))
		}
		fmt.Fprintf(w, "       ID: %s\n", truncateID(event.ID))
	}
}

// formatCounts formats per-kind counts with sorted keys.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

// formatArgs formats a payload map for display.
// Uses sorted keys to ensure deterministic output.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(args[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatValue formats a single value for display, handling nested structures deterministically.
func formatValue(v any) string {
	switch val := v.(type) {
	case map[string]any:
		return formatArgs(val)
	case []any:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
