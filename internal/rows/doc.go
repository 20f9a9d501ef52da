// Package rows builds one child view-model per element of a collection held
// in parent state.
//
// Each row derives its element from the current parent state and lifts row
// actions into parent actions tagged with the row's identity (ByID,
// ByIdentifiable) or position (ByIndex). Rows carry a WhenDifferent policy
// over the element equality, so a parent update only notifies the rows whose
// own element changed.
//
// Identity rows follow their element when the collection is reordered. Index
// rows address whatever element sits at their position until the factory is
// run again; rebuild index rows whenever the collection's shape changes.
//
// When an element disappears, its row keeps the last element it saw.
package rows
