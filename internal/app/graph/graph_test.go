package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
)

func newReviewer(id int64) *models.User {
	return &models.User{ID: id, Role: models.RoleReviewer}
}

func newFixture() (*models.Student, *models.Thesis) {
	student := &models.Student{ID: 1, UserID: 100}
	thesis := &models.Thesis{ID: 10, StudentID: 100, Status: models.ThesisUnderReview}
	return student, thesis
}

// After any assign/unassign, the forward reference and the holder's
// back-reference set must agree.
func assertConsistent(t *testing.T, thesis *models.Thesis, role models.Role, holder *models.User) {
	t.Helper()
	slot := *thesis.AssignmentFor(role)
	if holder == nil {
		require.Nil(t, slot)
		return
	}
	require.NotNil(t, slot)
	assert.Equal(t, holder.ID, *slot)
	assert.True(t, holder.HasAssignedThesis(thesis.ID))
}

func TestAssign_SetsBothDirections(t *testing.T) {
	student, thesis := newFixture()
	r1 := newReviewer(4)

	change, err := Assign(models.RoleReviewer, student, thesis, nil, r1)
	require.NoError(t, err)

	require.NotNil(t, student.ReviewerID)
	assert.Equal(t, r1.ID, *student.ReviewerID)
	assertConsistent(t, thesis, models.RoleReviewer, r1)
	assert.Contains(t, change.Users, r1)
}

func TestAssign_ReassignmentRemovesPriorHolder(t *testing.T) {
	student, thesis := newFixture()
	r1 := newReviewer(4)
	r2 := newReviewer(5)

	_, err := Assign(models.RoleReviewer, student, thesis, nil, r1)
	require.NoError(t, err)

	_, err = Assign(models.RoleReviewer, student, thesis, r1, r2)
	require.NoError(t, err)

	assert.False(t, r1.HasAssignedThesis(thesis.ID), "prior holder must lose the back-reference")
	assertConsistent(t, thesis, models.RoleReviewer, r2)
}

func TestAssign_SameHolderIdempotent(t *testing.T) {
	student, thesis := newFixture()
	r1 := newReviewer(4)

	_, err := Assign(models.RoleReviewer, student, thesis, nil, r1)
	require.NoError(t, err)
	_, err = Assign(models.RoleReviewer, student, thesis, r1, r1)
	require.NoError(t, err)

	assert.Equal(t, []int64{thesis.ID}, r1.AssignedTheses)
	assertConsistent(t, thesis, models.RoleReviewer, r1)
}

func TestAssign_RejectsNonStaffRole(t *testing.T) {
	student, thesis := newFixture()
	_, err := Assign(models.RoleDean, student, thesis, nil, &models.User{ID: 9, Role: models.RoleDean})
	require.Error(t, err)
}

func TestAssign_RejectsHolderWithoutRole(t *testing.T) {
	student, thesis := newFixture()
	_, err := Assign(models.RoleReviewer, student, thesis, nil, &models.User{ID: 9, Role: models.RoleConsultant})
	require.Error(t, err)
}

func TestAssign_SecondaryRoleHolderAccepted(t *testing.T) {
	student, thesis := newFixture()
	holder := &models.User{ID: 9, Role: models.RoleSupervisor, Roles: []models.Role{models.RoleReviewer}}

	_, err := Assign(models.RoleReviewer, student, thesis, nil, holder)
	require.NoError(t, err)
	assertConsistent(t, thesis, models.RoleReviewer, holder)
}

func TestUnassign_Idempotent(t *testing.T) {
	student, thesis := newFixture()
	r1 := newReviewer(4)

	_, err := Assign(models.RoleReviewer, student, thesis, nil, r1)
	require.NoError(t, err)

	_, err = Unassign(models.RoleReviewer, student, thesis, r1)
	require.NoError(t, err)
	assert.Nil(t, student.ReviewerID)
	assert.Nil(t, thesis.ReviewerID)
	assert.False(t, r1.HasAssignedThesis(thesis.ID))

	// Unassigning an already-unassigned reviewer must not error or corrupt
	// anything.
	_, err = Unassign(models.RoleReviewer, student, thesis, r1)
	require.NoError(t, err)
	assert.Empty(t, r1.AssignedTheses)
}

func TestAssign_WithoutThesisUpdatesStandingOnly(t *testing.T) {
	student := &models.Student{ID: 1, UserID: 100}
	r1 := newReviewer(4)

	change, err := Assign(models.RoleReviewer, student, nil, nil, r1)
	require.NoError(t, err)

	require.NotNil(t, student.ReviewerID)
	assert.Equal(t, r1.ID, *student.ReviewerID)
	// No thesis yet, so no back-reference is recorded.
	assert.Empty(t, r1.AssignedTheses)
	assert.Nil(t, change.Thesis)
}

func TestSnapshot_CopiesAssignmentsAndBackRefs(t *testing.T) {
	sup := &models.User{ID: 2, Role: models.RoleSupervisor}
	rev := newReviewer(4)
	student := &models.Student{ID: 1, UserID: 100, SupervisorID: &sup.ID, ReviewerID: &rev.ID}
	thesis := &models.Thesis{ID: 10, StudentID: 100}

	Snapshot(student, thesis, map[models.Role]*models.User{
		models.RoleSupervisor: sup,
		models.RoleReviewer:   rev,
	})

	assertConsistent(t, thesis, models.RoleSupervisor, sup)
	assertConsistent(t, thesis, models.RoleReviewer, rev)
	assert.Nil(t, thesis.ConsultantID)
}

func TestDetach_UnwindsAllBackReferences(t *testing.T) {
	sup := &models.User{ID: 2, Role: models.RoleSupervisor}
	rev := newReviewer(4)
	student := &models.Student{ID: 1, UserID: 100, SupervisorID: &sup.ID, ReviewerID: &rev.ID}
	thesis := &models.Thesis{ID: 10, StudentID: 100}

	Snapshot(student, thesis, map[models.Role]*models.User{
		models.RoleSupervisor: sup,
		models.RoleReviewer:   rev,
	})

	change := Detach(thesis, sup, rev, nil)
	assert.False(t, sup.HasAssignedThesis(thesis.ID))
	assert.False(t, rev.HasAssignedThesis(thesis.ID))
	assert.Nil(t, thesis.SupervisorID)
	assert.Nil(t, thesis.ReviewerID)
	assert.Len(t, change.Users, 2)

	// Detaching again is harmless.
	change = Detach(thesis, sup, rev)
	assert.Empty(t, change.Users)
}
