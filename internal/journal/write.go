package journal

import (
	"context"
	"fmt"

	"github.com/roach88/projector/internal/action"
)

// Append inserts a dispatch record.
// Uses ON CONFLICT DO NOTHING for idempotency - a record whose ID (or
// session/seq pair) already exists is silently ignored.
//
// Returns whether a new row was inserted.
func (j *Journal) Append(ctx context.Context, rec action.Record) (bool, error) {
	db, err := j.conn()
	if err != nil {
		return false, err
	}
	if rec.ID == "" {
		return false, fmt.Errorf("append dispatch: record id is required")
	}

	payload := string(rec.Payload)
	if payload == "" {
		payload = "null"
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO dispatches
		(id, session, seq, type, payload, prov_file, prov_func, prov_line, prov_info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.ID,
		rec.Session,
		rec.Seq,
		rec.Type,
		payload,
		rec.Provenance.File,
		rec.Provenance.Function,
		rec.Provenance.Line,
		rec.Provenance.Info,
	)
	if err != nil {
		return false, fmt.Errorf("append dispatch %s: %w", rec.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append dispatch %s: rows affected: %w", rec.ID, err)
	}
	return n > 0, nil
}
