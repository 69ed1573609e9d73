package auth

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermValueRead   Permission = "value:read"
	PermValueWrite  Permission = "value:write"
	PermCommit      Permission = "registry:commit"
	PermStorageSync Permission = "storage:sync"
	PermAuditRead   Permission = "audit:read"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleReader: {
		PermValueRead,
	},
	RoleWriter: {
		PermValueRead,
		PermValueWrite,
		PermCommit,
		PermStorageSync,
		PermAuditRead,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the role's permissions.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
