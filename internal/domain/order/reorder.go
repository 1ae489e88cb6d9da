package order

import "github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"

// ApplyReorder moves the element at ev.FromIndex to ev.ToIndex.
//
// Indices refer to the sequence the user was viewing when the gesture was
// captured. The element is removed first and then inserted at ToIndex of the
// shortened sequence, so [a b c d] with 0->2 becomes [b c a d].
//
// Out-of-range indices, or a MovedID that does not name the element at
// FromIndex, yield a *ReorderError and state is returned untouched.
// FromIndex == ToIndex returns state unchanged with a nil error.
func ApplyReorder(state State, ev types.ReorderEvent) (State, error) {
	n := len(state)
	if ev.FromIndex < 0 || ev.FromIndex >= n || ev.ToIndex < 0 || ev.ToIndex >= n {
		return state, &ReorderError{
			MovedID:   ev.MovedID,
			FromIndex: ev.FromIndex,
			ToIndex:   ev.ToIndex,
			Length:    n,
			Reason:    "index out of range",
		}
	}
	if ev.MovedID != "" && state[ev.FromIndex] != ev.MovedID {
		return state, &ReorderError{
			MovedID:   ev.MovedID,
			FromIndex: ev.FromIndex,
			ToIndex:   ev.ToIndex,
			Length:    n,
			Reason:    "moved id does not match source position",
		}
	}
	if ev.FromIndex == ev.ToIndex {
		return state, nil
	}

	moved := state[ev.FromIndex]
	next := make(State, 0, n)
	next = append(next, state[:ev.FromIndex]...)
	next = append(next, state[ev.FromIndex+1:]...)

	// insert at ToIndex of the shortened sequence
	next = append(next, "")
	copy(next[ev.ToIndex+1:], next[ev.ToIndex:])
	next[ev.ToIndex] = moved

	return next, nil
}
