package domain

import "strings"

// Role names. Roles are seeded by migration and never created at runtime.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// AuthorityPrefix is prepended to a role name inside tokens.
const AuthorityPrefix = "ROLE_"

// Role is a named permission set.
type Role struct {
	ID   string
	Name string
}

// ValidRoles returns the known role names.
func ValidRoles() []string {
	return []string{RoleCustomer, RoleAdmin}
}

// IsValidRole reports whether name is a known role.
func IsValidRole(name string) bool {
	for _, r := range ValidRoles() {
		if r == name {
			return true
		}
	}
	return false
}

// Authority returns the token form of a role name, e.g. "ROLE_ADMIN".
func Authority(role string) string {
	if strings.HasPrefix(role, AuthorityPrefix) {
		return role
	}
	return AuthorityPrefix + role
}

// RoleFromAuthority strips the authority prefix.
func RoleFromAuthority(authority string) string {
	return strings.TrimPrefix(authority, AuthorityPrefix)
}
