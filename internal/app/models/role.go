package models

import "fmt"

// Role defines a user role. The set of roles is closed: values outside
// this enumeration are rejected at the boundary by ParseRole.
type Role string

const (
	RoleStudent          Role = "student"
	RoleReviewer         Role = "reviewer"
	RoleSupervisor       Role = "supervisor"
	RoleConsultant       Role = "consultant"
	RoleHeadOfDepartment Role = "head_of_department"
	RoleDean             Role = "dean"
	RoleAdmin            Role = "admin"
)

// AllRoles lists every known role.
func AllRoles() []Role {
	return []Role{
		RoleStudent,
		RoleReviewer,
		RoleSupervisor,
		RoleConsultant,
		RoleHeadOfDepartment,
		RoleDean,
		RoleAdmin,
	}
}

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	for _, known := range AllRoles() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsStaff reports whether the role participates in thesis assignments
// as supervisor, consultant or reviewer.
func (r Role) IsStaff() bool {
	return r == RoleSupervisor || r == RoleConsultant || r == RoleReviewer
}
