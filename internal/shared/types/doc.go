// Package types provides shared data structures for the app switcher backend.
//
// This package defines the wire and domain types passed between the order
// core, the domain managers and the API layer.
//
// Core Types:
//   - Descriptor: Read-only application shortcut shown in the switcher
//   - Package: Installable application manifest
//   - ReorderEvent: Drag-and-drop "moved from A to B" gesture result
//   - Projection: Ordered descriptors split into inline and overflow sets
//
// Request Types:
//   - ReorderRequest: HTTP reorder body
//   - InstallRequest: HTTP install body
//   - WSMessage: WebSocket communication
//
// Statistics:
//   - AppStats, SessionStats: Manager statistics
//
// Example Usage:
//
//	desc := types.Descriptor{
//	    ID:          "calculator",
//	    DisplayName: "Calculator",
//	    Href:        "/apps/calculator",
//	}
package types
