// Package authz contains the route-level authorization gate and the
// per-resource ownership checks used by mutation endpoints.
package authz

import "fmt"

// Role is the closed set of account roles. The zero value is not a valid
// role, so an uninitialised claim can never pass a role check.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleBuyer
	RoleVendor
	RoleAdmin
)

// String returns the canonical lowercase name stored in sessions and the
// accounts table.
func (r Role) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleVendor:
		return "vendor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole maps a stored role name onto the closed set.
func ParseRole(s string) (Role, error) {
	switch s {
	case "buyer":
		return RoleBuyer, nil
	case "vendor":
		return RoleVendor, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleUnknown, fmt.Errorf("authz: unknown role %q", s)
	}
}

// Landing returns the dashboard entry point for the role.
func (r Role) Landing() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleVendor:
		return "/dashboard/vendor"
	default:
		return "/dashboard/buyer"
	}
}
