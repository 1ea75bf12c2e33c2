package model

import "fmt"

// Role is a closed set of user roles ordered by privilege.
type Role string

const (
	RoleUser       Role = "USER"
	RoleModerator  Role = "MODERATOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Capability is an action gated by role.
type Capability int

const (
	// CapModerateContent allows hiding content and comments.
	CapModerateContent Capability = iota
	// CapManageUsers allows enabling and disabling accounts.
	CapManageUsers
	// CapManageRoles allows changing the role of an account.
	CapManageRoles
)

var roleRank = map[Role]int{
	RoleUser:       0,
	RoleModerator:  1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

var capabilityRank = map[Capability]int{
	CapModerateContent: 1,
	CapManageUsers:     2,
	CapManageRoles:     3,
}

// ParseRole validates s against the known roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Can reports whether r grants capability c.
func (r Role) Can(c Capability) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	need, ok := capabilityRank[c]
	if !ok {
		return false
	}
	return rank >= need
}
