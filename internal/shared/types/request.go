package types

// ReorderRequest is the HTTP body for a finished drag gesture
type ReorderRequest struct {
	MovedID   string `json:"moved_id"`
	FromIndex *int   `json:"from_index" binding:"required"`
	ToIndex   *int   `json:"to_index" binding:"required"`
}

// Event converts the request into a reorder event
func (r ReorderRequest) Event() ReorderEvent {
	return ReorderEvent{MovedID: r.MovedID, FromIndex: *r.FromIndex, ToIndex: *r.ToIndex}
}

// InstallRequest represents an app install request
type InstallRequest struct {
	Package Package `json:"package"`
	Focus   bool    `json:"focus"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	MovedID   string `json:"moved_id,omitempty"`
	Index     int    `json:"index,omitempty"`
	FromIndex *int   `json:"from_index,omitempty"`
	ToIndex   *int   `json:"to_index,omitempty"`
}

// SessionMetadata summarizes a live UI session
type SessionMetadata struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	Phase     string `json:"phase"`
	Version   uint64 `json:"version"`
}

// SessionStats contains session manager statistics
type SessionStats struct {
	ActiveSessions int `json:"active_sessions"`
	TotalCreated   int `json:"total_created"`
}
