// Package binding provides optimistic get/set bindings for UI controls.
//
// A Binding reads through a getter and writes through a setter, caching the
// last written value so a control reading right after a write sees that value
// even though the store applies the write asynchronously.
//
// Cache policy: by default the cache is Sticky. Once written it is overwritten
// by later writes but never cleared, so the binding is owned by the UI from
// its first write on. Reconcile opts into clearing the cache as soon as the
// getter reports the cached value, which lets later external changes show
// through again.
package binding
