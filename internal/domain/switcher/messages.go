package switcher

import "github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"

// Msg is an input event for a Switcher
type Msg interface {
	msgName() string
}

// DescriptorsChanged carries the latest app list from the host registry
type DescriptorsChanged struct {
	Descriptors []types.Descriptor
}

// DragStart reports that the user picked up a shortcut
type DragStart struct {
	ID    string
	Index int
}

// DragUpdate reports an intermediate drag position
type DragUpdate struct {
	ID    string
	Index int
}

// DragEnd carries the finished gesture
type DragEnd struct {
	Event types.ReorderEvent
}

func (DescriptorsChanged) msgName() string { return "descriptors_changed" }
func (DragStart) msgName() string { return "drag_start" }
func (DragUpdate) msgName() string { return "drag_update" }
func (DragEnd) msgName() string { return "drag_end" }

// Result is the outcome of one Dispatch
type Result struct {
	Changed    bool             // A render was published
	Projection types.Projection // Current projection after the message
	Err        error            // Rejection reason, state unchanged
}
