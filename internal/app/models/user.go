package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         int64     `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Email      string    `json:"email" db:"email" example:"user@university.edu"`           // User's email address
	Password   string    `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	FirstName  string    `json:"firstName" db:"first_name" example:"John"`                 // User's first name
	LastName   string    `json:"lastName" db:"last_name" example:"Doe"`                    // User's last name
	Role       Role      `json:"role" db:"role" example:"supervisor"`                      // User's primary role
	Roles      []Role    `json:"roles,omitempty" db:"roles"`                               // Secondary roles (a user may hold several capabilities)
	Faculty    string    `json:"faculty" db:"faculty" example:"Engineering"`               // Faculty the user belongs to
	IsActive   bool      `json:"isActive" db:"is_active" example:"true"`                   // Whether the user account is active
	IsApproved bool      `json:"isApproved" db:"is_approved" example:"true"`               // Whether a staff account has been admin-approved
	CreatedAt  time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"` // Timestamp when the user was last updated

	// AssignedTheses holds the back-references of a staff user: the ids of
	// every thesis this user supervises, consults for or reviews. Kept
	// consistent with the forward references on the thesis by the graph
	// package.
	AssignedTheses []int64 `json:"assignedTheses,omitempty"`
}

// EffectiveRoles returns the primary role followed by any secondary roles.
func (u *User) EffectiveRoles() []Role {
	roles := make([]Role, 0, len(u.Roles)+1)
	roles = append(roles, u.Role)
	for _, r := range u.Roles {
		if r != u.Role {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether the user holds the given role, either as the
// primary role or as one of the secondary roles.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.EffectiveRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// HasAssignedThesis reports whether the given thesis id is present in the
// user's back-reference set.
func (u *User) HasAssignedThesis(thesisID int64) bool {
	for _, id := range u.AssignedTheses {
		if id == thesisID {
			return true
		}
	}
	return false
}

// Student defines the student profile based on the 'students' table.
// The supervisor/consultant/reviewer ids are the student's standing
// assignments; a thesis snapshots them at submission time.
type Student struct {
	ID            int64        `json:"id" db:"id"`
	UserID        int64        `json:"userId" db:"user_id"`
	StudentNumber string       `json:"studentNumber" db:"student_number"`
	SupervisorID  *int64       `json:"supervisorId,omitempty" db:"supervisor_id"`
	ConsultantID  *int64       `json:"consultantId,omitempty" db:"consultant_id"`
	ReviewerID    *int64       `json:"reviewerId,omitempty" db:"reviewer_id"`
	ThesisStatus  ThesisStatus `json:"thesisStatus" db:"thesis_status"` // Denormalized copy of the active thesis status
	User          *User        `json:"user,omitempty"`                  // Relation, no db tag
}

// AssignmentFor returns a pointer to the student's standing assignment
// field for the given staff role, or nil for a non-staff role.
func (s *Student) AssignmentFor(role Role) **int64 {
	switch role {
	case RoleSupervisor:
		return &s.SupervisorID
	case RoleConsultant:
		return &s.ConsultantID
	case RoleReviewer:
		return &s.ReviewerID
	default:
		return nil
	}
}
