package models

import (
	"fmt"
	"strings"
)

// Role is stored and compared only in its canonical ROLE_* form.
type Role string

const (
	RoleStudent Role = "ROLE_STUDENT"
	RoleTeacher Role = "ROLE_TEACHER"
	RoleAdmin   Role = "ROLE_ADMIN"
)

const rolePrefix = "ROLE_"

var ErrInvalidRole = fmt.Errorf("invalid role")

// Roles lists every role, in the order the signup form offers them.
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin}
}

// ParseRole accepts "STUDENT", "student" or "ROLE_STUDENT" style input.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, rolePrefix)

	role := Role(rolePrefix + name)
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return role, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Name is the role without its prefix, e.g. "STUDENT".
func (r Role) Name() string {
	return strings.TrimPrefix(string(r), rolePrefix)
}

func (r Role) String() string {
	return string(r)
}
