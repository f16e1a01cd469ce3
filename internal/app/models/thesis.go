package models

import (
	"time"
)

// ThesisStatus represents the lifecycle status of a thesis.
type ThesisStatus string

const (
	ThesisNotSubmitted          ThesisStatus = "not_submitted"
	ThesisSubmitted             ThesisStatus = "submitted"
	ThesisUnderReview           ThesisStatus = "under_review"
	ThesisResubmissionRequired  ThesisStatus = "resubmission_required"
	ThesisEvaluated             ThesisStatus = "evaluated"
)

// TopicOrigin identifies which party proposed the current thesis topic.
type TopicOrigin string

const (
	TopicByNone       TopicOrigin = "none"
	TopicByStudent    TopicOrigin = "student"
	TopicBySupervisor TopicOrigin = "supervisor"
)

// TopicStatus represents the negotiation state of the topic slot.
// A supervisor-originated proposal in 'pending' state is awaiting the
// student's response; a student-originated one awaits the supervisor.
type TopicStatus string

const (
	TopicNone     TopicStatus = "none"
	TopicPending  TopicStatus = "pending"
	TopicApproved TopicStatus = "approved"
	TopicRejected TopicStatus = "rejected"
)

// Thesis defines the thesis model based on the 'theses' table.
// The supervisor/consultant/reviewer ids are snapshots of the student's
// standing assignments taken at submission time (copy-on-submit); explicit
// reassignment through the graph package updates them afterwards.
type Thesis struct {
	ID        int64  `json:"id" db:"id"`
	StudentID int64  `json:"studentId" db:"student_id"` // User id of the owning student

	Topic                  string      `json:"topic" db:"topic"`
	TopicProposedBy        TopicOrigin `json:"topicProposedBy" db:"topic_proposed_by"`
	TopicStatus            TopicStatus `json:"topicStatus" db:"topic_status"`
	TopicRejectionComments *string     `json:"topicRejectionComments,omitempty" db:"topic_rejection_comments"`

	Status           ThesisStatus `json:"status" db:"status"`
	FilePath         *string      `json:"filePath,omitempty" db:"file_path"`
	SupervisorID     *int64       `json:"supervisorId,omitempty" db:"supervisor_id"`
	ConsultantID     *int64       `json:"consultantId,omitempty" db:"consultant_id"`
	ReviewerID       *int64       `json:"reviewerId,omitempty" db:"reviewer_id"`
	FinalGrade       *string      `json:"finalGrade,omitempty" db:"final_grade"`
	CurrentIteration int          `json:"currentIteration" db:"current_iteration"`
	Version          int64        `json:"-" db:"version"` // Optimistic concurrency token

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Iterations is the ordered review history, iteration numbers strictly
	// increasing and contiguous from 1.
	Iterations []ReviewIteration `json:"iterations,omitempty"`
}

// AssignmentFor returns a pointer to the thesis's assignment field for the
// given staff role, or nil for a non-staff role.
func (t *Thesis) AssignmentFor(role Role) **int64 {
	switch role {
	case RoleSupervisor:
		return &t.SupervisorID
	case RoleConsultant:
		return &t.ConsultantID
	case RoleReviewer:
		return &t.ReviewerID
	default:
		return nil
	}
}

// Iteration returns the iteration with the given number, or nil.
func (t *Thesis) Iteration(number int) *ReviewIteration {
	for i := range t.Iterations {
		if t.Iterations[i].Number == number {
			return &t.Iterations[i]
		}
	}
	return nil
}

// ActiveIteration returns the iteration matching CurrentIteration, or nil
// for a freshly submitted thesis that has no recorded iterations yet.
func (t *Thesis) ActiveIteration() *ReviewIteration {
	return t.Iteration(t.CurrentIteration)
}

// Terminal reports whether the thesis reached a terminal-approved state.
func (t *Thesis) Terminal() bool {
	return t.Status == ThesisEvaluated
}
