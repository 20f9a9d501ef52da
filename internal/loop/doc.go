// Package loop implements the single UI-affine execution context.
//
// Every core callback (dispatch, state delivery, projection notification)
// runs on one designated context. Loop provides that context as a
// single-goroutine FIFO executor; Inline runs tasks on the caller's goroutine
// for tests and for hosts that already own a UI thread.
//
// ARCHITECTURE:
//
// Single-Consumer Task Loop:
// Tasks are posted from any goroutine and drained by exactly one goroutine
// running Run. This ensures:
// - Tasks run in the order they were posted
// - No two tasks ever run concurrently
// - State handed to subscribers never races with reducers
//
// A panicking task is recovered and logged; the loop keeps draining.
package loop
