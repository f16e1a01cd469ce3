// Package workflow implements the thesis review state machine and the
// topic negotiation sub-machine as pure transitions over the models.
// Services load the entities, consult the authorization resolver, apply a
// transition and persist the result; no state lives in this package.
package workflow

import (
	"fmt"
	"time"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
)

// Submit records a submission or resubmission of the thesis file.
//
// A first submission moves not_submitted to submitted and opens iteration 1.
// Resubmission is allowed from any non-terminal state; the prior iteration
// history is preserved and the iteration counter incremented when the
// current iteration already carries content (preserve-and-increment policy).
func Submit(t *models.Thesis, filePath string, now time.Time) error {
	if filePath == "" {
		return apperrors.NewValidationError("thesis file is required")
	}
	if t.Terminal() {
		return apperrors.NewInvalidStateError("thesis has already been evaluated")
	}

	switch t.Status {
	case models.ThesisNotSubmitted:
		if t.TopicStatus != models.TopicApproved {
			return apperrors.NewInvalidStateError("thesis topic must be approved before submission")
		}
		t.CurrentIteration = 1
		t.Iterations = append(t.Iterations, models.ReviewIteration{ThesisID: t.ID, Number: 1})
	default:
		// Resubmission. Keep history; open a fresh iteration when the
		// current one already holds reviews or a signature.
		if active := t.ActiveIteration(); active != nil && (len(active.Reviews) > 0 || active.Signed()) {
			openIteration(t)
		} else if active == nil {
			// Legacy pre-iteration thesis variant (sentinel 0).
			openIteration(t)
		}
	}

	t.FilePath = &filePath
	t.Status = models.ThesisSubmitted
	t.UpdatedAt = now
	return nil
}

// SubmitReview appends the caller role's review to the current iteration.
// Multiple distinct-role reviews may coexist in one iteration, but a role
// may not submit twice into the same iteration; re-review must be
// requested explicitly instead. A rejected verdict sends the thesis to
// resubmission_required.
func SubmitReview(t *models.Thesis, role models.Role, comments string, status models.ReviewStatus, now time.Time) error {
	if !role.IsStaff() {
		return apperrors.NewValidationError(fmt.Sprintf("role %q does not submit reviews", role))
	}
	switch status {
	case models.ReviewApproved, models.ReviewRejected, models.ReviewPending:
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown review status %q", status))
	}

	switch t.Status {
	case models.ThesisSubmitted, models.ThesisUnderReview, models.ThesisResubmissionRequired:
	default:
		return apperrors.NewInvalidStateError(
			fmt.Sprintf("reviews cannot be submitted while the thesis is %s", t.Status))
	}

	iteration := t.ActiveIteration()
	if iteration == nil {
		// Legacy variant without an iteration record for the current round.
		openIteration(t)
		iteration = t.ActiveIteration()
	}
	if iteration.ReviewBy(role) != nil {
		return apperrors.NewInvalidStateError(
			fmt.Sprintf("%s already reviewed iteration %d; request a re-review instead", role, iteration.Number))
	}

	iteration.Reviews = append(iteration.Reviews, models.Review{
		IterationID: iteration.ID,
		Role:        role,
		Comments:    comments,
		Status:      status,
		SubmittedAt: now,
	})

	if t.Status == models.ThesisSubmitted {
		t.Status = models.ThesisUnderReview
	}
	if status == models.ReviewRejected {
		t.Status = models.ThesisResubmissionRequired
	}
	t.UpdatedAt = now
	return nil
}

// RequestReReview opens the next iteration, carrying forward no review
// content, and resets the thesis to under_review. Prior iterations remain
// immutable history.
func RequestReReview(t *models.Thesis, now time.Time) error {
	switch t.Status {
	case models.ThesisSubmitted, models.ThesisUnderReview, models.ThesisResubmissionRequired:
	default:
		return apperrors.NewInvalidStateError(
			fmt.Sprintf("re-review cannot be requested while the thesis is %s", t.Status))
	}

	openIteration(t)
	t.Status = models.ThesisUnderReview
	t.UpdatedAt = now
	return nil
}

// Sign records the signing role's signed document on the current
// iteration. A thesis cannot be evaluated without a signed final iteration.
func Sign(t *models.Thesis, signedDocPath string, now time.Time) error {
	if signedDocPath == "" {
		return apperrors.NewValidationError("signed document path is required")
	}
	if t.Status != models.ThesisUnderReview {
		return apperrors.NewInvalidStateError(
			fmt.Sprintf("iteration cannot be signed while the thesis is %s", t.Status))
	}

	iteration := t.ActiveIteration()
	if iteration == nil {
		return apperrors.NewCustomError(apperrors.ErrIterationNotFound,
			fmt.Sprintf("thesis has no iteration %d", t.CurrentIteration))
	}
	if iteration.Signed() {
		return apperrors.NewInvalidStateError(
			fmt.Sprintf("iteration %d is already signed", iteration.Number))
	}

	iteration.SignedDocPath = &signedDocPath
	signedAt := now
	iteration.SignedAt = &signedAt
	t.UpdatedAt = now
	return nil
}

// Evaluate records the final grade and moves the thesis to its terminal
// evaluated state. The current iteration must be signed first.
func Evaluate(t *models.Thesis, grade string, now time.Time) error {
	if grade == "" {
		return apperrors.NewValidationError("final grade is required")
	}
	if t.Terminal() {
		return apperrors.NewInvalidStateError("thesis has already been evaluated")
	}
	if t.Status != models.ThesisUnderReview {
		return apperrors.NewInvalidStateError(
			fmt.Sprintf("thesis cannot be evaluated while %s", t.Status))
	}
	iteration := t.ActiveIteration()
	if iteration == nil || !iteration.Signed() {
		return apperrors.NewInvalidStateError("current iteration must be signed before evaluation")
	}

	t.FinalGrade = &grade
	t.Status = models.ThesisEvaluated
	t.UpdatedAt = now
	return nil
}

// openIteration appends the next iteration record, keeping numbers
// strictly increasing and contiguous.
func openIteration(t *models.Thesis) {
	next := t.CurrentIteration + 1
	if t.CurrentIteration == 0 {
		next = 1
	}
	t.CurrentIteration = next
	t.Iterations = append(t.Iterations, models.ReviewIteration{ThesisID: t.ID, Number: next})
}
