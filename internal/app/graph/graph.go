// Package graph maintains the assignment edges binding a student to their
// supervisor, consultant and reviewer. Every edge is bidirectional: a
// forward reference on the student record (and on the active thesis, when
// one exists) and a back-reference in the staff user's assigned-thesis set.
// All mutations go through this package so both directions always change
// together; callers persist the touched entities in one transaction.
package graph

import (
	"fmt"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
)

// Change reports which entities a mutation touched, so the caller knows
// what to persist.
type Change struct {
	Student *models.Student
	Thesis  *models.Thesis
	Users   []*models.User
}

func (c *Change) touched(u *models.User) {
	if u == nil {
		return
	}
	for _, existing := range c.Users {
		if existing == u {
			return
		}
	}
	c.Users = append(c.Users, u)
}

// Assign binds next as the student's staff member for the given role,
// replacing prev. It updates the student's standing assignment, the active
// thesis's forward reference when a thesis exists, removes the thesis from
// prev's back-reference set and adds it to next's. Reassigning to the
// current holder is a no-op; next may be nil to clear the assignment.
func Assign(role models.Role, student *models.Student, thesis *models.Thesis, prev, next *models.User) (Change, error) {
	if !role.IsStaff() {
		return Change{}, fmt.Errorf("graph: role %q is not assignable", role)
	}
	if student == nil {
		return Change{}, fmt.Errorf("graph: student required")
	}
	if next != nil && !next.HasRole(role) {
		return Change{}, fmt.Errorf("graph: user %d does not hold role %q", next.ID, role)
	}

	change := Change{Student: student}

	slot := student.AssignmentFor(role)
	if next != nil {
		*slot = &next.ID
	} else {
		*slot = nil
	}

	if thesis != nil {
		change.Thesis = thesis
		tslot := thesis.AssignmentFor(role)
		if next != nil {
			*tslot = &next.ID
		} else {
			*tslot = nil
		}

		if prev != nil && (next == nil || prev.ID != next.ID) {
			removeThesis(prev, thesis.ID)
			change.touched(prev)
		}
		if next != nil && !next.HasAssignedThesis(thesis.ID) {
			next.AssignedTheses = append(next.AssignedTheses, thesis.ID)
			change.touched(next)
		}
	}

	return change, nil
}

// Unassign clears the student's assignment for the role and removes the
// thesis from the holder's back-reference set. Unassigning an edge that is
// already absent is not an error.
func Unassign(role models.Role, student *models.Student, thesis *models.Thesis, holder *models.User) (Change, error) {
	return Assign(role, student, thesis, holder, nil)
}

// Snapshot copies the student's standing assignments onto a thesis at
// submission time and records the thesis in each holder's back-reference
// set. Later reassignment of the student's staff does not retroactively
// change an in-flight thesis except through an explicit Assign.
func Snapshot(student *models.Student, thesis *models.Thesis, holders map[models.Role]*models.User) Change {
	change := Change{Student: student, Thesis: thesis}

	thesis.SupervisorID = student.SupervisorID
	thesis.ConsultantID = student.ConsultantID
	thesis.ReviewerID = student.ReviewerID

	for _, holder := range holders {
		if holder == nil {
			continue
		}
		if !holder.HasAssignedThesis(thesis.ID) {
			holder.AssignedTheses = append(holder.AssignedTheses, thesis.ID)
			change.touched(holder)
		}
	}
	return change
}

// Detach removes the thesis from every holder's back-reference set and
// clears the thesis's forward references, the unwind step that precedes
// thesis deletion. Holders that never referenced the thesis are skipped.
func Detach(thesis *models.Thesis, holders ...*models.User) Change {
	change := Change{Thesis: thesis}

	for _, holder := range holders {
		if holder == nil {
			continue
		}
		if holder.HasAssignedThesis(thesis.ID) {
			removeThesis(holder, thesis.ID)
			change.touched(holder)
		}
	}

	thesis.SupervisorID = nil
	thesis.ConsultantID = nil
	thesis.ReviewerID = nil
	return change
}

func removeThesis(u *models.User, thesisID int64) {
	kept := u.AssignedTheses[:0]
	for _, id := range u.AssignedTheses {
		if id != thesisID {
			kept = append(kept, id)
		}
	}
	u.AssignedTheses = kept
}
