package types

import "time"

// Package represents an installable app manifest
type Package struct {
	ID          string    `json:"id" yaml:"id" toml:"id" binding:"required"`
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Description string    `json:"description,omitempty" yaml:"description" toml:"description"`
	Href        string    `json:"href,omitempty" yaml:"href" toml:"href"`
	Icon        string    `json:"icon,omitempty" yaml:"icon" toml:"icon"`
	Category    string    `json:"category,omitempty" yaml:"category" toml:"category"`
	Version     string    `json:"version,omitempty" yaml:"version" toml:"version"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags" toml:"tags"`
	InstalledAt time.Time `json:"installed_at" yaml:"-" toml:"-"`

	// Resolved at load time
	IconRef Icon `json:"icon_ref" yaml:"-" toml:"-"`
}

// ToDescriptor builds the switcher descriptor for a package
func (p *Package) ToDescriptor(active bool) Descriptor {
	href := p.Href
	if href == "" {
		href = "/" + p.ID
	}
	icon := p.IconRef
	if icon.Key == "" {
		icon.Key = p.Icon
	}
	return Descriptor{
		ID:          p.ID,
		DisplayName: p.Name,
		Href:        href,
		Active:      active,
		Icon:        icon,
	}
}
