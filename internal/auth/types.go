package auth

import "errors"

// Role represents an authorisation tier for API callers.
type Role string

const (
	// RoleReader may read values and export trees.
	RoleReader Role = "reader"

	// RoleWriter may additionally set values, commit, and trigger load and
	// save.
	RoleWriter Role = "writer"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleReader, RoleWriter}

// IsValidRole returns true if r is one of ValidRoles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRole converts a role name, rejecting unknown roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !IsValidRole(r) {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Sentinel errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrUnknownRole  = errors.New("unknown role")
	ErrForbidden    = errors.New("insufficient permissions")
)
