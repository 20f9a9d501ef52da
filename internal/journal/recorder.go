package journal

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/projector/internal/action"
)

// Recorder turns store dispatch notifications into journal records.
//
// Append failures are logged and counted; they never reach the dispatching
// code, since provenance storage must not affect dispatch semantics.
type Recorder struct {
	journal *Journal
	session string
	failed  atomic.Int64
}

// NewRecorder creates a Recorder writing into j under a session token drawn
// from gen.
func NewRecorder(j *Journal, gen SessionGenerator) *Recorder {
	return &Recorder{journal: j, session: gen.Generate()}
}

// NewRecorderForSession creates a Recorder for an existing session token,
// for resuming a session.
func NewRecorderForSession(j *Journal, session string) *Recorder {
	return &Recorder{journal: j, session: session}
}

// Session returns the session token records are written under.
func (r *Recorder) Session() string {
	return r.session
}

// Record appends one dispatch. seq is the store's logical clock value.
func (r *Recorder) Record(ctx context.Context, act any, prov action.Provenance, seq int64) {
	rec, err := action.NewRecord(r.session, seq, act, prov)
	if err != nil {
		r.failed.Add(1)
		slog.Error("journal record failed",
			"session", r.session,
			"seq", seq,
			"type", action.TypeName(act),
			"error", err,
		)
		return
	}

	if _, err := r.journal.Append(ctx, rec); err != nil {
		r.failed.Add(1)
		slog.Error("journal append failed",
			"session", r.session,
			"seq", seq,
			"id", rec.ID,
			"error", err,
		)
		return
	}

	slog.Debug("dispatch journaled",
		"session", r.session,
		"seq", seq,
		"type", rec.Type,
		"origin", rec.Provenance.String(),
	)
}

// Failures returns how many records could not be written.
func (r *Recorder) Failures() int64 {
	return r.failed.Load()
}
