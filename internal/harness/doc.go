// Package harness runs scripted scenarios against the todo store and checks
// what the binding layer did.
//
// A scenario is a YAML file: an initial list, a sequence of steps and a set
// of assertions. Steps go through the same adapters the TUI uses: actions
// dispatched on the root view-model, row actions dispatched on row
// view-models, draft text written into the optimistic draft binding, and
// platform dismissals written into the detail link binding.
//
// Every run uses a fresh in-memory journal, a fixed session token and the
// inline executor, so the resulting trace is deterministic and can be
// compared against golden files.
//
// # Assertions
//
//   - final_items: the list after all steps, compared exactly
//   - final_draft: the draft text after all steps
//   - final_selected: the selected item id ("" for none)
//   - dispatch_count: number of journaled dispatches
//   - row_emissions: notifications received by the row of an item
//   - journal_kinds: action kinds in journal order
//   - journal_info: provenance annotations in journal order
package harness
