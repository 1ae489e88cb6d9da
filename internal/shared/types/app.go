package types

// Icon is an opaque reference to an application icon.
// The switcher core never inspects it.
type Icon struct {
	Key  string `json:"key,omitempty"`  // Icon set key (e.g. "calculator")
	Path string `json:"path,omitempty"` // Resolved file path, if any
	MIME string `json:"mime,omitempty"` // Detected content type of Path
}

// Descriptor describes one application shortcut
type Descriptor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Href        string `json:"href"`
	Active      bool   `json:"active"`
	Icon        Icon   `json:"icon"`
}

// ReorderEvent is produced once by a finished drag gesture
type ReorderEvent struct {
	MovedID   string `json:"moved_id"`
	FromIndex int    `json:"from_index"`
	ToIndex   int    `json:"to_index"`
}

// Projection is the render-ready view of the switcher
type Projection struct {
	Inline   []Descriptor `json:"inline"`
	Overflow []Descriptor `json:"overflow"`
	Order    []string     `json:"order"`   // Ids of Inline followed by Overflow
	Version  uint64       `json:"version"` // Order store version the projection was built from
}

// All returns inline followed by overflow descriptors
func (p Projection) All() []Descriptor {
	all := make([]Descriptor, 0, len(p.Inline)+len(p.Overflow))
	all = append(all, p.Inline...)
	return append(all, p.Overflow...)
}

// AppStats contains app manager statistics
type AppStats struct {
	InstalledApps int     `json:"installed_apps"`
	FocusedAppID  *string `json:"focused_app_id,omitempty"`
}
