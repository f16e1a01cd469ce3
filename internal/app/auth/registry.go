package auth

import (
	"fmt"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
)

// Group names a non-hierarchical set of roles used for coarse capability
// checks. Group membership is independent of the role hierarchy.
type Group string

const (
	// GroupManagement may manage assignments and approve staff accounts.
	GroupManagement Group = "management"
	// GroupStaff are the roles that participate in thesis reviews.
	GroupStaff Group = "staff"
	// GroupSigning is the role allowed to sign/finalize a review iteration.
	GroupSigning Group = "signing"
)

// hierarchyTable lists, per role, the roles it directly outranks. The
// registry computes the transitive closure at construction time. The table
// is fixed; there is no runtime mutation.
var hierarchyTable = map[models.Role][]models.Role{
	models.RoleAdmin:            {models.RoleDean},
	models.RoleDean:             {models.RoleHeadOfDepartment},
	models.RoleHeadOfDepartment: {models.RoleSupervisor, models.RoleConsultant, models.RoleReviewer},
	models.RoleSupervisor:       {},
	models.RoleConsultant:       {},
	models.RoleReviewer:         {},
	models.RoleStudent:          {},
}

var groupTable = map[Group][]models.Role{
	GroupManagement: {models.RoleAdmin, models.RoleDean, models.RoleHeadOfDepartment},
	GroupStaff:      {models.RoleSupervisor, models.RoleConsultant, models.RoleReviewer},
	GroupSigning:    {models.RoleSupervisor},
}

// Registry answers role hierarchy and group membership questions. It is
// built once at process start; an unknown role in the tables is a
// configuration error surfaced by NewRegistry, not a runtime error.
type Registry struct {
	closure map[models.Role]map[models.Role]bool
	groups  map[Group]map[models.Role]bool
}

// NewRegistry validates the static hierarchy and group tables and computes
// the hierarchy closure.
func NewRegistry() (*Registry, error) {
	known := make(map[models.Role]bool, len(models.AllRoles()))
	for _, r := range models.AllRoles() {
		known[r] = true
	}

	for role, subs := range hierarchyTable {
		if !known[role] {
			return nil, fmt.Errorf("role registry: unknown role %q in hierarchy table", role)
		}
		for _, sub := range subs {
			if !known[sub] {
				return nil, fmt.Errorf("role registry: unknown role %q under %q in hierarchy table", sub, role)
			}
		}
	}
	for group, members := range groupTable {
		for _, m := range members {
			if !known[m] {
				return nil, fmt.Errorf("role registry: unknown role %q in group %q", m, group)
			}
		}
	}
	for _, r := range models.AllRoles() {
		if _, ok := hierarchyTable[r]; !ok {
			return nil, fmt.Errorf("role registry: role %q missing from hierarchy table", r)
		}
	}

	reg := &Registry{
		closure: make(map[models.Role]map[models.Role]bool, len(hierarchyTable)),
		groups:  make(map[Group]map[models.Role]bool, len(groupTable)),
	}

	for role := range hierarchyTable {
		set := map[models.Role]bool{role: true}
		if err := expand(role, set, map[models.Role]bool{role: true}); err != nil {
			return nil, err
		}
		reg.closure[role] = set
	}
	for group, members := range groupTable {
		set := make(map[models.Role]bool, len(members))
		for _, m := range members {
			set[m] = true
		}
		reg.groups[group] = set
	}

	return reg, nil
}

// expand walks the hierarchy from role, accumulating every role it counts
// as. The path set guards against cycles in the table.
func expand(role models.Role, acc map[models.Role]bool, path map[models.Role]bool) error {
	for _, sub := range hierarchyTable[role] {
		if path[sub] {
			return fmt.Errorf("role registry: cycle through %q", sub)
		}
		if acc[sub] {
			continue
		}
		acc[sub] = true
		path[sub] = true
		if err := expand(sub, acc, path); err != nil {
			return err
		}
		delete(path, sub)
	}
	return nil
}

// Outranks reports whether candidate's hierarchy closure includes minimum.
// A role always outranks itself.
func (r *Registry) Outranks(candidate, minimum models.Role) bool {
	set, ok := r.closure[candidate]
	if !ok {
		return false
	}
	return set[minimum]
}

// InGroup reports plain set membership; no hierarchy ascension applies.
func (r *Registry) InGroup(role models.Role, group Group) bool {
	set, ok := r.groups[group]
	if !ok {
		return false
	}
	return set[role]
}

// GroupMembers returns the members of a group, used to describe the roles
// an actor would have needed when rendering a denial.
func (r *Registry) GroupMembers(group Group) []models.Role {
	members := make([]models.Role, 0, len(r.groups[group]))
	for _, role := range models.AllRoles() {
		if r.groups[group][role] {
			members = append(members, role)
		}
	}
	return members
}
