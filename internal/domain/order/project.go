package order

import (
	"sort"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

// DefaultInlineBudget is the number of shortcuts shown outside the menu
const DefaultInlineBudget = 5

// Project orders descriptors by their rank in state and splits them into
// the inline and overflow sets.
//
// Descriptors whose id is missing from state sort last, keeping input
// order. The descriptors slice is never modified.
func Project(descriptors []types.Descriptor, state State, budget int) types.Projection {
	p, _ := ProjectStale(descriptors, state, budget)
	return p
}

// ProjectStale is Project that also reports the ids in state that have no
// descriptor. Those ids are excluded from the projection.
func ProjectStale(descriptors []types.Descriptor, state State, budget int) (types.Projection, []string) {
	if budget < 0 {
		budget = 0
	}

	rank := make(map[string]int, len(state))
	for i, id := range state {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}
	rankOf := func(id string) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(state)
	}

	ordered := make([]types.Descriptor, len(descriptors))
	copy(ordered, descriptors)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rankOf(ordered[i].ID) < rankOf(ordered[j].ID)
	})

	var stale []string
	if len(state) > 0 {
		known := make(map[string]struct{}, len(descriptors))
		for _, d := range descriptors {
			known[d.ID] = struct{}{}
		}
		for _, id := range state {
			if _, ok := known[id]; !ok {
				stale = append(stale, id)
			}
		}
	}

	k := budget
	if k > len(ordered) {
		k = len(ordered)
	}
	ids := make([]string, len(ordered))
	for i, d := range ordered {
		ids[i] = d.ID
	}

	return types.Projection{
		Inline:   ordered[:k:k],
		Overflow: ordered[k:],
		Order:    ids,
	}, stale
}
