package auth

import "strings"

const (
	// RoleUser is the authority every protected route requires by default
	RoleUser = "USER"
	// RoleAdmin is granted to operators; it carries no extra routes yet
	RoleAdmin = "ADMIN"
)

// ParseRoles splits a comma separated role list.
// Entries are trimmed and empty entries dropped; the result is never nil.
func ParseRoles(raw string) []string {
	roles := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
