// Package viewmodel connects a reducer store to UI code through observable,
// projectable view-models.
//
// A root ViewModel wraps a Source (usually a *store.Store) and caches its
// latest state so reads never block. Project derives a child view-model from
// a parent through a Projection: a state map computing the child state from
// the parent state, and an action map lifting child actions into parent
// actions. An action map may decline (return false); the child action is then
// dropped without side effects. Accepted actions reach the source with the
// provenance the original caller supplied.
//
// Each child carries an EmitPolicy deciding whether a parent update notifies
// the child's subscribers. Always notifies on every update; WhenDifferent only
// when the derived state changed under an equality. The child's cached state
// is refreshed on every parent update either way.
//
// # Lifetime
//
// Children keep their parent alive; parents refer to children only through
// weak pointers. A child nobody references stops receiving updates and is
// pruned on the parent's next update, so views can derive view-models freely
// without explicit teardown. Close detaches a view-model immediately.
//
// # Threading
//
// Updates arrive on the source's executor and are delivered there, in order.
// State may be read from any goroutine.
package viewmodel
