// Package navigation computes which menu entries a user may see.
package navigation

import (
	"slices"

	"castella/internal/session"
)

// Role names known to the backend.
const (
	RoleAdministrator = "ADMINISTRADOR"
	RoleSupervisor    = "SUPERVISOR"
	RoleSuperAdmin    = "Super Admin"
	RoleTechnician    = "TECNICO"
)

// MenuEntry is one item of the navigation manifest.
type MenuEntry struct {
	Title        string   `json:"title"`
	Path         string   `json:"path"`
	AllowedRoles []string `json:"-"`
}

var staff = []string{RoleAdministrator, RoleSupervisor, RoleSuperAdmin}

var defaultManifest = []MenuEntry{
	{Title: "Dashboard", Path: "/dashboard", AllowedRoles: staff},
	{Title: "Ordenes de Trabajo", Path: "/orders", AllowedRoles: staff},
	{Title: "Ordenes de Móvil", Path: "/mobile-orders", AllowedRoles: staff},
	{Title: "Garantias", Path: "/guarantees", AllowedRoles: staff},
	{Title: "Ratings", Path: "/ratings", AllowedRoles: []string{RoleAdministrator, RoleSuperAdmin}},
}

// DefaultManifest returns a copy of the built-in menu.
func DefaultManifest() []MenuEntry {
	out := make([]MenuEntry, len(defaultManifest))
	for i, e := range defaultManifest {
		e.AllowedRoles = slices.Clone(e.AllowedRoles)
		out[i] = e
	}
	return out
}

// VisibleMenu returns, in manifest order, the entries whose allowed roles contain the
// user's role name. Role names compare exactly. A nil user or an unknown role sees nothing.
func VisibleMenu(manifest []MenuEntry, user *session.UserProfile) []MenuEntry {
	visible := []MenuEntry{}
	if user == nil || user.Role.Name == "" {
		return visible
	}
	for _, entry := range manifest {
		if slices.Contains(entry.AllowedRoles, user.Role.Name) {
			visible = append(visible, entry)
		}
	}
	return visible
}
