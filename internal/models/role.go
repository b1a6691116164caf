package models

import "strings"

// Role is the kind of actor making a request.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// IsStaff reports whether the role may triage any report.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// ParseRole accepts the three known roles, ignoring case.
func ParseRole(raw string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleCitizen, RoleStaff, RoleAdmin:
		return r, true
	}
	return "", false
}
