// Package store provides a reducer-driven state container.
//
// A Store owns a state value and a pure reducer. Dispatch is fire-and-forget:
// the action is posted onto the store's executor, and on that executor the
// reducer runs, the new state is stored, dispatch observers see the action
// with its provenance, and subscribers see the new state. Because every step
// runs on one executor, dispatches are applied in the order they were issued
// and subscribers never run concurrently.
//
// A reducer that panics drops the dispatch: state is unchanged and nobody is
// notified.
package store
