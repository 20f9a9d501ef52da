// Package action provides the foundational dispatch types for projector.
//
// This package contains the provenance value threaded through every dispatch
// and the journal record derived from it. All other internal packages import
// action; action imports nothing internal.
//
// Key design constraints:
//   - Provenance is advisory: no package branches on its content
//   - Provenance capture is explicit (Here), never implicit
//   - Record ordering uses logical clocks (seq) only, never wall-clock timestamps
//   - All JSON tags use snake_case
package action
