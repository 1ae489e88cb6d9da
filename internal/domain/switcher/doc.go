// Package switcher hosts the ordering state machine of one app switcher view.
//
// A Switcher combines the order Store with the last descriptor set and the
// last published projection. It is driven by messages:
//
//	DescriptorsChanged -> reconcile against the new app list
//	DragStart/DragUpdate -> recorded, never mutate order
//	DragEnd            -> apply the reorder against the viewed sequence
//
// Phases:
//
//	Uninitialized --(first descriptor set)--> Reconciled
//	Reconciled    --(valid drag end)--------> Reconciled (new order)
//	Reconciled    --(descriptors change)----> Reconciled (reconciled order)
//	Reconciled    --(invalid drag end)------> Reconciled (unchanged, error)
//
// Dispatch serializes messages, so a Switcher behaves as if every event
// arrived on one thread. Render listeners run after the state lock is
// released, in event order, and must not call Dispatch.
package switcher
