package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/projector/internal/action"
)

// Read returns all records of a session ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) if the session has no records.
func (j *Journal) Read(ctx context.Context, session string) ([]action.Record, error) {
	db, err := j.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, session, seq, type, payload, prov_file, prov_func, prov_line, prov_info
		FROM dispatches
		WHERE session = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	records := []action.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}

	return records, nil
}

// ReadType is like Read but keeps only records of the given action type.
func (j *Journal) ReadType(ctx context.Context, session, typ string) ([]action.Record, error) {
	all, err := j.Read(ctx, session)
	if err != nil {
		return nil, err
	}
	filtered := make([]action.Record, 0, len(all))
	for _, rec := range all {
		if rec.Type == typ {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// Sessions lists every session in the journal, ordered by first appearance.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	db, err := j.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT session FROM dispatches
		GROUP BY session
		ORDER BY MIN(rowid) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Count returns the number of records in a session.
func (j *Journal) Count(ctx context.Context, session string) (int, error) {
	db, err := j.conn()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dispatches WHERE session = ?", session,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dispatches: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq recorded for a session, or 0.
// Used to resume a session's clock.
func (j *Journal) LastSeq(ctx context.Context, session string) (int64, error) {
	db, err := j.conn()
	if err != nil {
		return 0, err
	}
	var seq sql.NullInt64
	err = db.QueryRowContext(ctx,
		"SELECT MAX(seq) FROM dispatches WHERE session = ?", session,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// scanRecord reads one dispatches row.
func scanRecord(rows *sql.Rows) (action.Record, error) {
	var (
		rec     action.Record
		payload string
	)
	err := rows.Scan(
		&rec.ID,
		&rec.Session,
		&rec.Seq,
		&rec.Type,
		&payload,
		&rec.Provenance.File,
		&rec.Provenance.Function,
		&rec.Provenance.Line,
		&rec.Provenance.Info,
	)
	if err != nil {
		return action.Record{}, fmt.Errorf("scan dispatch: %w", err)
	}
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}
