package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
)

var now = time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

func approvedTopicThesis() *models.Thesis {
	return &models.Thesis{
		ID:              10,
		StudentID:       100,
		Topic:           "Graph Neural Networks",
		TopicProposedBy: models.TopicByStudent,
		TopicStatus:     models.TopicApproved,
		Status:          models.ThesisNotSubmitted,
	}
}

func submittedThesis(t *testing.T) *models.Thesis {
	t.Helper()
	th := approvedTopicThesis()
	require.NoError(t, Submit(th, "uploads/thesis.pdf", now))
	return th
}

func TestSubmit_FirstSubmission(t *testing.T) {
	th := approvedTopicThesis()

	require.NoError(t, Submit(th, "uploads/thesis.pdf", now))

	assert.Equal(t, models.ThesisSubmitted, th.Status)
	assert.Equal(t, 1, th.CurrentIteration)
	require.Len(t, th.Iterations, 1)
	assert.Equal(t, 1, th.Iterations[0].Number)
	require.NotNil(t, th.FilePath)
	assert.Equal(t, "uploads/thesis.pdf", *th.FilePath)
}

func TestSubmit_RequiresApprovedTopic(t *testing.T) {
	th := approvedTopicThesis()
	th.TopicStatus = models.TopicPending

	err := Submit(th, "uploads/thesis.pdf", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestSubmit_RejectsEmptyFile(t *testing.T) {
	err := Submit(approvedTopicThesis(), "", now)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSubmit_AfterEvaluationRejected(t *testing.T) {
	th := submittedThesis(t)
	th.Status = models.ThesisEvaluated

	err := Submit(th, "uploads/v2.pdf", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestSubmit_ResubmissionPreservesHistory(t *testing.T) {
	th := submittedThesis(t)
	require.NoError(t, SubmitReview(th, models.RoleSupervisor, "needs work", models.ReviewRejected, now))
	assert.Equal(t, models.ThesisResubmissionRequired, th.Status)

	require.NoError(t, Submit(th, "uploads/v2.pdf", now))

	assert.Equal(t, models.ThesisSubmitted, th.Status)
	assert.Equal(t, 2, th.CurrentIteration)
	require.Len(t, th.Iterations, 2)
	// Iteration 1 history is kept intact.
	require.NotNil(t, th.Iteration(1).ReviewBy(models.RoleSupervisor))
	assert.Empty(t, th.Iteration(2).Reviews)
}

func TestSubmitReview_MovesToUnderReview(t *testing.T) {
	th := submittedThesis(t)

	require.NoError(t, SubmitReview(th, models.RoleConsultant, "looks fine", models.ReviewApproved, now))

	assert.Equal(t, models.ThesisUnderReview, th.Status)
	review := th.ActiveIteration().ReviewBy(models.RoleConsultant)
	require.NotNil(t, review)
	assert.Equal(t, models.ReviewApproved, review.Status)
	assert.Equal(t, now, review.SubmittedAt)
}

func TestSubmitReview_DistinctRolesCoexist(t *testing.T) {
	th := submittedThesis(t)

	require.NoError(t, SubmitReview(th, models.RoleConsultant, "ok", models.ReviewApproved, now))
	require.NoError(t, SubmitReview(th, models.RoleReviewer, "ok", models.ReviewApproved, now))
	require.NoError(t, SubmitReview(th, models.RoleSupervisor, "ok", models.ReviewApproved, now))

	assert.Len(t, th.ActiveIteration().Reviews, 3)
}

func TestSubmitReview_SameRoleTwiceRejected(t *testing.T) {
	th := submittedThesis(t)

	require.NoError(t, SubmitReview(th, models.RoleReviewer, "ok", models.ReviewApproved, now))
	err := SubmitReview(th, models.RoleReviewer, "again", models.ReviewApproved, now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestSubmitReview_NonStaffRoleRejected(t *testing.T) {
	th := submittedThesis(t)
	err := SubmitReview(th, models.RoleDean, "ok", models.ReviewApproved, now)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSubmitReview_NotSubmittedRejected(t *testing.T) {
	th := approvedTopicThesis()
	err := SubmitReview(th, models.RoleReviewer, "ok", models.ReviewApproved, now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRequestReReview_OpensNextIteration(t *testing.T) {
	th := submittedThesis(t)
	require.NoError(t, SubmitReview(th, models.RoleSupervisor, "revise", models.ReviewRejected, now))
	require.NoError(t, Submit(th, "uploads/v2.pdf", now))
	require.NoError(t, SubmitReview(th, models.RoleSupervisor, "pending check", models.ReviewPending, now))
	require.Equal(t, 2, th.CurrentIteration)

	require.NoError(t, RequestReReview(th, now))

	assert.Equal(t, 3, th.CurrentIteration)
	assert.Equal(t, models.ThesisUnderReview, th.Status)
	assert.Empty(t, th.Iteration(3).Reviews)
	// Iteration 2's recorded reviews remain immutable history.
	require.NotNil(t, th.Iteration(2).ReviewBy(models.RoleSupervisor))
	assert.Equal(t, models.ReviewPending, th.Iteration(2).ReviewBy(models.RoleSupervisor).Status)
}

func TestIterationNumbersContiguous(t *testing.T) {
	th := submittedThesis(t)
	require.NoError(t, SubmitReview(th, models.RoleReviewer, "ok", models.ReviewApproved, now))
	require.NoError(t, RequestReReview(th, now))
	require.NoError(t, SubmitReview(th, models.RoleReviewer, "ok", models.ReviewApproved, now))
	require.NoError(t, RequestReReview(th, now))

	for i, iteration := range th.Iterations {
		assert.Equal(t, i+1, iteration.Number)
	}
	assert.Equal(t, th.Iterations[len(th.Iterations)-1].Number, th.CurrentIteration)
}

func TestSign_RecordsDocumentOnCurrentIteration(t *testing.T) {
	th := submittedThesis(t)
	require.NoError(t, SubmitReview(th, models.RoleSupervisor, "ok", models.ReviewApproved, now))

	require.NoError(t, Sign(th, "uploads/signed.pdf", now))

	iteration := th.ActiveIteration()
	require.True(t, iteration.Signed())
	assert.Equal(t, "uploads/signed.pdf", *iteration.SignedDocPath)
	assert.Equal(t, now, *iteration.SignedAt)

	err := Sign(th, "uploads/signed-again.pdf", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestSign_RequiresUnderReview(t *testing.T) {
	th := submittedThesis(t)
	err := Sign(th, "uploads/signed.pdf", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestEvaluate_RequiresSignedIteration(t *testing.T) {
	th := submittedThesis(t)
	require.NoError(t, SubmitReview(th, models.RoleSupervisor, "ok", models.ReviewApproved, now))

	err := Evaluate(th, "A", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)

	require.NoError(t, Sign(th, "uploads/signed.pdf", now))
	require.NoError(t, Evaluate(th, "A", now))

	assert.Equal(t, models.ThesisEvaluated, th.Status)
	require.NotNil(t, th.FinalGrade)
	assert.Equal(t, "A", *th.FinalGrade)

	// Terminal state: nothing moves anymore.
	require.ErrorIs(t, Evaluate(th, "B", now), apperrors.ErrInvalidState)
	require.ErrorIs(t, Submit(th, "uploads/v3.pdf", now), apperrors.ErrInvalidState)
}

func TestEvaluate_RequiresGrade(t *testing.T) {
	th := submittedThesis(t)
	require.ErrorIs(t, Evaluate(th, "", now), apperrors.ErrValidationFailed)
}

func TestLegacySentinelIteration(t *testing.T) {
	// A pre-iteration thesis has CurrentIteration 0 and no records; the
	// first review after migration opens iteration 1.
	th := &models.Thesis{
		ID:          11,
		StudentID:   101,
		TopicStatus: models.TopicApproved,
		Status:      models.ThesisUnderReview,
	}

	require.NoError(t, SubmitReview(th, models.RoleReviewer, "ok", models.ReviewApproved, now))
	assert.Equal(t, 1, th.CurrentIteration)
	require.Len(t, th.Iterations, 1)
}
