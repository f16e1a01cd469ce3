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

func TestGetUser_OwnProfile(t *testing.T) {
	e := newEnv(t)
	e.seedStudent(100, "Engineering")

	resp, err := e.userService().GetUser(context.Background(), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.ID)
	require.NotNil(t, resp.StudentNumber)
	assert.Equal(t, "20250100", *resp.StudentNumber)
}

func TestGetUser_OtherProfileNeedsManagementRole(t *testing.T) {
	e := newEnv(t)
	e.seedStudent(100, "Engineering")
	e.seedStaff(2, models.RoleSupervisor, true)

	_, err := e.userService().GetUser(context.Background(), 2, 100)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestGetUser_DeanReadsOtherProfiles(t *testing.T) {
	e := newEnv(t)
	e.seedStudent(100, "Engineering")
	e.seedStaff(5, models.RoleDean, true)

	resp, err := e.userService().GetUser(context.Background(), 5, 100)
	require.NoError(t, err)
	assert.Equal(t, "student", resp.Role)
}

func TestListUsers_FilteredByRole(t *testing.T) {
	e := newEnv(t)
	e.seedStudent(100, "Engineering")
	e.seedStaff(2, models.RoleSupervisor, true)
	e.seedStaff(1, models.RoleAdmin, true)

	role := models.RoleSupervisor
	users, err := e.userService().ListUsers(context.Background(), 1, &role)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].ID)
}

func TestListUsers_RoleFilterMatchesSecondaryRoles(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	supervisor := e.seedStaff(2, models.RoleSupervisor, true)
	supervisor.Roles = []models.Role{models.RoleReviewer}

	role := models.RoleReviewer
	users, err := e.userService().ListUsers(context.Background(), 1, &role)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].ID)
}

func TestApproveUser_StaffAccount(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	reviewer := e.seedStaff(4, models.RoleReviewer, false)

	require.NoError(t, e.userService().ApproveUser(context.Background(), 1, 4, true))
	assert.True(t, reviewer.IsApproved)

	// Approval can be revoked again.
	require.NoError(t, e.userService().ApproveUser(context.Background(), 1, 4, false))
	assert.False(t, reviewer.IsApproved)
}

func TestApproveUser_StudentRejected(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	e.seedStudent(100, "Engineering")

	err := e.userService().ApproveUser(context.Background(), 1, 100, true)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestApproveUser_RequiresManagementRole(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(2, models.RoleSupervisor, true)
	e.seedStaff(4, models.RoleReviewer, false)

	err := e.userService().ApproveUser(context.Background(), 2, 4, true)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAssignStaff_BindsStudentAndThesis(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	_, student := e.seedStudent(100, "Engineering")
	reviewer := e.seedStaff(4, models.RoleReviewer, true)

	thesis := e.theses.add(&models.Thesis{
		StudentID:   100,
		TopicStatus: models.TopicApproved,
		Status:      models.ThesisUnderReview,
	})

	err := e.assignmentService().AssignStaff(context.Background(), 1, &dto.AssignStaffRequest{
		StudentID: 100,
		StaffID:   &reviewer.ID,
		Role:      "reviewer",
	})
	require.NoError(t, err)

	require.NotNil(t, student.ReviewerID)
	assert.Equal(t, int64(4), *student.ReviewerID)
	require.NotNil(t, thesis.ReviewerID)
	assert.Equal(t, int64(4), *thesis.ReviewerID)
	assert.Equal(t, []int64{thesis.ID}, reviewer.AssignedTheses)
}

func TestAssignStaff_ReplacementMovesBackReference(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	_, student := e.seedStudent(100, "Engineering")
	oldReviewer := e.seedStaff(4, models.RoleReviewer, true)
	newReviewer := e.seedStaff(5, models.RoleReviewer, true)

	thesis := e.theses.add(&models.Thesis{
		StudentID:  100,
		Status:     models.ThesisUnderReview,
		ReviewerID: &oldReviewer.ID,
	})
	student.ReviewerID = &oldReviewer.ID
	oldReviewer.AssignedTheses = []int64{thesis.ID}

	err := e.assignmentService().AssignStaff(context.Background(), 1, &dto.AssignStaffRequest{
		StudentID: 100,
		StaffID:   &newReviewer.ID,
		Role:      "reviewer",
	})
	require.NoError(t, err)

	assert.Empty(t, oldReviewer.AssignedTheses)
	assert.Equal(t, []int64{thesis.ID}, newReviewer.AssignedTheses)
	assert.Equal(t, int64(5), *thesis.ReviewerID)
}

func TestAssignStaff_ClearAssignment(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	_, student := e.seedStudent(100, "Engineering")
	supervisor := e.seedStaff(2, models.RoleSupervisor, true)
	student.SupervisorID = &supervisor.ID

	err := e.assignmentService().AssignStaff(context.Background(), 1, &dto.AssignStaffRequest{
		StudentID: 100,
		StaffID:   nil,
		Role:      "supervisor",
	})
	require.NoError(t, err)
	assert.Nil(t, student.SupervisorID)
}

func TestAssignStaff_StaffMustHoldRole(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	e.seedStudent(100, "Engineering")
	consultant := e.seedStaff(3, models.RoleConsultant, true)

	err := e.assignmentService().AssignStaff(context.Background(), 1, &dto.AssignStaffRequest{
		StudentID: 100,
		StaffID:   &consultant.ID,
		Role:      "reviewer",
	})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAssignStaff_NonStaffRoleRejected(t *testing.T) {
	e := newEnv(t)
	e.seedStaff(1, models.RoleAdmin, true)
	e.seedStudent(100, "Engineering")

	err := e.assignmentService().AssignStaff(context.Background(), 1, &dto.AssignStaffRequest{
		StudentID: 100,
		Role:      "dean",
	})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAssignStaff_RequiresManagementRole(t *testing.T) {
	e := newEnv(t)
	e.seedStudent(100, "Engineering")
	supervisor := e.seedStaff(2, models.RoleSupervisor, true)

	err := e.assignmentService().AssignStaff(context.Background(), 2, &dto.AssignStaffRequest{
		StudentID: 100,
		StaffID:   &supervisor.ID,
		Role:      "supervisor",
	})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
