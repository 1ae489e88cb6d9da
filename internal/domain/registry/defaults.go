package registry

import "github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"

// DefaultApps returns the catalog installed when no manifests are found
func DefaultApps() []types.Package {
	return []types.Package{
		{ID: "users", Name: "Users", Href: "/users", Icon: "users", Category: "core"},
		{ID: "inventory", Name: "Inventory", Href: "/inventory", Icon: "inventory", Category: "core"},
		{ID: "requests", Name: "Requests", Href: "/requests", Icon: "requests", Category: "circulation"},
		{ID: "checkin", Name: "Check in", Href: "/checkin", Icon: "checkin", Category: "circulation"},
		{ID: "checkout", Name: "Check out", Href: "/checkout", Icon: "checkout", Category: "circulation"},
		{ID: "search", Name: "Search", Href: "/search", Icon: "search", Category: "core"},
		{ID: "settings", Name: "Settings", Href: "/settings", Icon: "settings", Category: "system"},
	}
}
