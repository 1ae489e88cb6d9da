package order

import "github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"

// Reconcile merges state with the live descriptor set.
//
// An empty state is built wholesale from the descriptor order. Otherwise ids
// missing from state are appended in descriptor order and ids without a
// descriptor are removed, keeping the relative order of the rest. changed is
// false when there was nothing to add or remove; next is then a copy of state.
func Reconcile(state State, descriptors []types.Descriptor) (next State, changed bool) {
	known := make(map[string]struct{}, len(descriptors))
	ids := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if _, dup := known[d.ID]; dup {
			continue
		}
		known[d.ID] = struct{}{}
		ids = append(ids, d.ID)
	}

	if len(state) == 0 {
		return State(ids), len(ids) > 0
	}

	present := make(map[string]struct{}, len(state))
	next = make(State, 0, len(ids))
	for _, id := range state {
		if _, ok := known[id]; !ok {
			changed = true // stale
			continue
		}
		present[id] = struct{}{}
		next = append(next, id)
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			next = append(next, id)
			changed = true
		}
	}

	return next, changed
}

// Diff returns ids to append and ids to remove when reconciling state
func Diff(state State, descriptors []types.Descriptor) (toAdd, toRemove []string) {
	known := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		known[d.ID] = struct{}{}
	}
	present := make(map[string]struct{}, len(state))
	for _, id := range state {
		present[id] = struct{}{}
		if _, ok := known[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	for _, d := range descriptors {
		if _, ok := present[d.ID]; !ok {
			present[d.ID] = struct{}{}
			toAdd = append(toAdd, d.ID)
		}
	}
	return toAdd, toRemove
}
