// Package order implements the ordering subsystem of the app switcher.
//
// The switcher shows a handful of application shortcuts inline and the
// rest behind an overflow menu. Users reorder them by dragging. This
// package owns the sequence itself and nothing else.
//
// Components:
//   - Store: canonical permutation of application ids
//   - Reconcile: merges the order with the live descriptor set
//   - ApplyReorder: single-element move driven by a drag gesture
//   - Project: orders descriptors by rank and splits inline/overflow
//
// Reconcile, ApplyReorder and Project are pure. They never mutate their
// inputs and always return fresh slices, so callers may keep references
// to previous states.
//
// Invariants:
//   - No duplicate ids in a State
//   - New ids are appended, never interleaved
//   - Ids without a descriptor are dropped on reconciliation
//
// Example Usage:
//
//	state, _ := order.Reconcile(nil, descriptors)
//	state, err := order.ApplyReorder(state, types.ReorderEvent{FromIndex: 0, ToIndex: 2})
//	view := order.Project(descriptors, state, order.DefaultInlineBudget)
package order
