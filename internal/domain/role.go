package domain

import "strings"

// Role identifies a raw role string supplied by the identity provider.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleEditor  Role = "editor"
	RoleFounder Role = "founder"
)

// Capabilities is the permission bundle derived from a role. Founder is a
// superset of editor; staff is the complement of editor.
type Capabilities struct {
	Founder bool
	Editor  bool
	Staff   bool
}

// ResolveRole maps a raw role identifier to its capability set. The comparison
// is case-insensitive and happens exactly once at the boundary; unrecognized
// roles resolve to staff as the least-privilege default.
func ResolveRole(raw string) Capabilities {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleFounder:
		return Capabilities{Founder: true, Editor: true}
	case RoleEditor:
		return Capabilities{Editor: true}
	default:
		return Capabilities{Staff: true}
	}
}
