// Package journal provides SQLite-backed durable storage for dispatch records.
//
// The journal is an append-only log of every action a store accepted, with the
// provenance the dispatching code attached to it. It exists for diagnostics
// (the trace command) and for replaying a session's actions into a fresh
// store.
//
// # Invariants
//
// Idempotent appends:
//   - records are content-addressed (action.RecordID)
//   - INSERT ... ON CONFLICT(id) DO NOTHING, so re-appending is a no-op
//
// Logical ordering:
//   - all ordering uses the seq column (logical clock), never timestamps
//   - all queries ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Provenance is stored, never interpreted.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - single connection: SQLite has one writer
package journal
