package models

import "fmt"

// UserRole is the closed set of roles a user may hold.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleUser    UserRole = "user"
)

// Roles lists every valid role.
var Roles = []UserRole{RoleAdmin, RoleTeacher, RoleUser}

// ParseRole converts raw input into a role. Empty input yields RoleUser.
func ParseRole(raw string) (UserRole, error) {
	if raw == "" {
		return RoleUser, nil
	}
	role := UserRole(raw)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleUser:
		return true
	}
	return false
}

// Satisfies reports whether r meets any of the required roles. Admin satisfies everything.
func (r UserRole) Satisfies(required ...UserRole) bool {
	if r == RoleAdmin {
		return true
	}
	for _, want := range required {
		if r == want {
			return true
		}
	}
	return false
}
