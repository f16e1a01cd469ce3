package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
)

func approvedReview() *dto.SubmitReviewRequest {
	return &dto.SubmitReviewRequest{Comments: "solid work", Status: "approved"}
}

func rejectedReview() *dto.SubmitReviewRequest {
	return &dto.SubmitReviewRequest{Comments: "methodology needs work", Status: "rejected"}
}

// seedSubmittedThesis sets up a submitted thesis with supervisor 2 and
// reviewer 4 assigned.
func seedSubmittedThesis(t *testing.T, e *env) *models.Thesis {
	t.Helper()
	seedApprovedTopic(e)
	thesis, err := e.thesisService().SubmitThesis(context.Background(), 100, pdfHeader())
	require.NoError(t, err)
	return thesis
}

func TestSubmitReview_AssignedReviewerApproves(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)

	got, err := e.reviewService().SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)

	assert.Equal(t, models.ThesisUnderReview, got.Status)
	review := got.ActiveIteration().ReviewBy(models.RoleReviewer)
	require.NotNil(t, review)
	assert.Equal(t, models.ReviewApproved, review.Status)
	assert.NotZero(t, review.ID)
}

func TestSubmitReview_RejectionForcesResubmission(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)

	got, err := e.reviewService().SubmitReview(context.Background(), 2, thesis.ID, rejectedReview())
	require.NoError(t, err)

	assert.Equal(t, models.ThesisResubmissionRequired, got.Status)
	student, err := e.users.GetStudentByUserID(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, models.ThesisResubmissionRequired, student.ThesisStatus)
}

func TestSubmitReview_SameRoleTwiceRejected(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)

	_, err = svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestSubmitReview_DistinctRolesShareIteration(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)
	got, err := svc.SubmitReview(context.Background(), 2, thesis.ID, approvedReview())
	require.NoError(t, err)

	assert.Equal(t, 1, got.CurrentIteration)
	assert.Len(t, got.ActiveIteration().Reviews, 2)
}

func TestSubmitReview_UnassignedStaffDenied(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	e.seedStaff(9, models.RoleReviewer, true)

	_, err := e.reviewService().SubmitReview(context.Background(), 9, thesis.ID, approvedReview())
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSubmitReview_UnapprovedStaffDenied(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	reviewer, err := e.users.GetUserByID(context.Background(), 4)
	require.NoError(t, err)
	reviewer.IsApproved = false

	_, err = e.reviewService().SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSubmitReview_HeadOfDepartmentDenied(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	hod := e.seedStaff(6, models.RoleHeadOfDepartment, true)
	hod.Faculty = "Engineering"

	// Department heads manage but do not review.
	_, err := e.reviewService().SubmitReview(context.Background(), 6, thesis.ID, approvedReview())
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSubmitReview_AdminReviewsWithoutAssignment(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	e.seedStaff(7, models.RoleAdmin, true)

	got, err := e.reviewService().SubmitReview(context.Background(), 7, thesis.ID, approvedReview())
	require.NoError(t, err)

	// An unassigned admin reviews under the reviewer role.
	assert.Equal(t, models.ThesisUnderReview, got.Status)
	review := got.ActiveIteration().ReviewBy(models.RoleReviewer)
	require.NotNil(t, review)
	assert.Equal(t, models.ReviewApproved, review.Status)
}

func TestRequestReReview_OpensNextIteration(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)

	got, err := svc.RequestReReview(context.Background(), 4, thesis.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ThesisUnderReview, got.Status)
	assert.Equal(t, 2, got.CurrentIteration)
	require.Len(t, got.Iterations, 2)
	// Iteration 1 keeps its review history.
	assert.Len(t, got.Iterations[0].Reviews, 1)
	assert.Empty(t, got.Iterations[1].Reviews)

	// The same role may now review again in the fresh iteration.
	_, err = svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)
}

func TestSignIteration_SupervisorSigns(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)

	got, err := svc.SignIteration(context.Background(), 2, thesis.ID, pdfHeader())
	require.NoError(t, err)

	iteration := got.ActiveIteration()
	require.NotNil(t, iteration.SignedDocPath)
	require.NotNil(t, iteration.SignedAt)
}

func TestSignIteration_ReviewerCannotSign(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)

	_, err = svc.SignIteration(context.Background(), 4, thesis.ID, pdfHeader())
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSignIteration_AlreadySigned(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)
	_, err = svc.SignIteration(context.Background(), 2, thesis.ID, pdfHeader())
	require.NoError(t, err)

	_, err = svc.SignIteration(context.Background(), 2, thesis.ID, pdfHeader())
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
	// The second upload was rolled back.
	assert.NotEmpty(t, e.storage.deleted)
}

func TestEvaluate_RequiresSignedIteration(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)

	_, err = svc.Evaluate(context.Background(), 2, thesis.ID, &dto.EvaluateRequest{Grade: "A"})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestEvaluate_FullCycle(t *testing.T) {
	e := newEnv(t)
	thesis := seedSubmittedThesis(t, e)
	svc := e.reviewService()

	_, err := svc.SubmitReview(context.Background(), 4, thesis.ID, approvedReview())
	require.NoError(t, err)
	_, err = svc.SignIteration(context.Background(), 2, thesis.ID, pdfHeader())
	require.NoError(t, err)

	got, err := svc.Evaluate(context.Background(), 2, thesis.ID, &dto.EvaluateRequest{Grade: "A"})
	require.NoError(t, err)

	assert.Equal(t, models.ThesisEvaluated, got.Status)
	require.NotNil(t, got.FinalGrade)
	assert.Equal(t, "A", *got.FinalGrade)

	student, err := e.users.GetStudentByUserID(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, models.ThesisEvaluated, student.ThesisStatus)

	// A terminal thesis accepts no further submissions.
	_, err = e.thesisService().SubmitThesis(context.Background(), 100, pdfHeader())
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestEvaluate_ConsultantOutranked(t *testing.T) {
	e := newEnv(t)
	_, student := e.seedStudent(100, "Engineering")
	consultant := e.seedStaff(3, models.RoleConsultant, true)
	student.ConsultantID = &consultant.ID
	supervisor := e.seedStaff(2, models.RoleSupervisor, true)
	student.SupervisorID = &supervisor.ID

	e.theses.add(&models.Thesis{
		StudentID:       100,
		TopicStatus:     models.TopicApproved,
		TopicProposedBy: models.TopicByStudent,
		Status:          models.ThesisNotSubmitted,
	})
	thesis, err := e.thesisService().SubmitThesis(context.Background(), 100, pdfHeader())
	require.NoError(t, err)

	_, err = e.reviewService().SubmitReview(context.Background(), 3, thesis.ID, approvedReview())
	require.NoError(t, err)
	_, err = e.reviewService().SignIteration(context.Background(), 2, thesis.ID, pdfHeader())
	require.NoError(t, err)

	// Evaluation needs at least supervisor rank; the consultant is denied.
	_, err = e.reviewService().Evaluate(context.Background(), 3, thesis.ID, &dto.EvaluateRequest{Grade: "B"})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = e.reviewService().Evaluate(context.Background(), 2, thesis.ID, &dto.EvaluateRequest{Grade: "B"})
	require.NoError(t, err)
}
