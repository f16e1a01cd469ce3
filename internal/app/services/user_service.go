package services

import (
	"context"
	"errors"

	authz "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// UserService handles account administration and profile reads
type UserService struct {
	userRepo repositories.IUserRepository
	authz    *authz.AuthorizationService
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, authzService *authz.AuthorizationService, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		authz:    authzService,
		logger:   logger,
	}
}

// GetUser returns a user profile. Everyone may read their own profile;
// other profiles require the listing capability.
func (s *UserService) GetUser(ctx context.Context, actorID, targetID int64) (*dto.UserResponse, error) {
	if actorID != targetID {
		actor, err := s.userRepo.GetUserByID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionUserList, nil); err != nil {
			return nil, err
		}
	}

	target, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var student *models.Student
	if target.HasRole(models.RoleStudent) {
		student, err = s.userRepo.GetStudentByUserID(ctx, targetID)
		if err != nil && !errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, err
		}
	}

	resp := ToUserResponse(target, student)
	return &resp, nil
}

// ListUsers returns all users, optionally filtered by role
func (s *UserService) ListUsers(ctx context.Context, actorID int64, role *models.Role) ([]dto.UserResponse, error) {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionUserList, nil); err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListUsers(ctx, role)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u, nil))
	}
	return out, nil
}

// ApproveUser sets the admin-approval flag on a staff account. Unapproved
// staff keep their role but are denied review actions until approved.
func (s *UserService) ApproveUser(ctx context.Context, actorID, targetID int64, approved bool) error {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionUserApprove, nil); err != nil {
		return err
	}

	target, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}

	staff := target.Role.IsStaff()
	for _, r := range target.Roles {
		staff = staff || r.IsStaff()
	}
	if !staff {
		return apperrors.NewValidationError("only staff accounts require approval")
	}

	if err := s.userRepo.SetApproved(ctx, targetID, approved); err != nil {
		return err
	}

	s.logger.Info().Int64("actorID", actorID).Int64("targetID", targetID).Bool("approved", approved).Msg("Staff approval changed")
	return nil
}

// ToUserResponse maps a user, and optionally the student profile, to the
// API representation
func ToUserResponse(u *models.User, student *models.Student) dto.UserResponse {
	resp := dto.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		Faculty:    u.Faculty,
		IsApproved: u.IsApproved,
	}

	for _, r := range u.Roles {
		resp.Roles = append(resp.Roles, string(r))
	}
	if len(u.AssignedTheses) > 0 {
		resp.AssignedTheses = u.AssignedTheses
	}

	if student != nil {
		number := student.StudentNumber
		status := string(student.ThesisStatus)
		resp.StudentNumber = &number
		resp.SupervisorID = student.SupervisorID
		resp.ConsultantID = student.ConsultantID
		resp.ReviewerID = student.ReviewerID
		resp.ThesisStatus = &status
	}

	return resp
}
