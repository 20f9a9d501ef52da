// Package todo is the demo application domain: a titled list of items with a
// draft field, a selected item and a text filter.
//
// State and actions are plain serializable values so dispatches can be
// journaled and replayed. Reduce is pure.
package todo
