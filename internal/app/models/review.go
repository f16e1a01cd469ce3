package models

import (
	"time"
)

// ReviewStatus is the verdict recorded with a single role's review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is one role's review inside a single iteration. At most one
// review per (iteration, role) pair exists.
type Review struct {
	ID          int64        `json:"id" db:"id"`
	IterationID int64        `json:"iterationId" db:"iteration_id"`
	Role        Role         `json:"role" db:"role"`
	Comments    string       `json:"comments" db:"comments"`
	Status      ReviewStatus `json:"status" db:"status"`
	SubmittedAt time.Time    `json:"submittedAt" db:"submitted_at"`
}

// ReviewIteration is one numbered round of the multi-role review cycle.
// Numbers are 1-based and contiguous; 0 is the sentinel for "no review
// yet" on the legacy pre-iteration thesis variant.
type ReviewIteration struct {
	ID            int64      `json:"id" db:"id"`
	ThesisID      int64      `json:"thesisId" db:"thesis_id"`
	Number        int        `json:"number" db:"number"`
	SignedDocPath *string    `json:"signedDocPath,omitempty" db:"signed_doc_path"` // Written by the signing role (supervisor)
	SignedAt      *time.Time `json:"signedAt,omitempty" db:"signed_at"`
	Reviews       []Review   `json:"reviews,omitempty"`
}

// ReviewBy returns the review submitted by the given role in this
// iteration, or nil.
func (it *ReviewIteration) ReviewBy(role Role) *Review {
	for i := range it.Reviews {
		if it.Reviews[i].Role == role {
			return &it.Reviews[i]
		}
	}
	return nil
}

// Signed reports whether the signing role finalized this iteration.
func (it *ReviewIteration) Signed() bool {
	return it.SignedDocPath != nil && it.SignedAt != nil
}
