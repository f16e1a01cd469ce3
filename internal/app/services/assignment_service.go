package services

import (
	"context"
	"errors"

	authz "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/graph"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AssignmentService manages the staff-to-student assignment edges. All
// mutations go through the graph package so the forward references and the
// staff back-references always move together, then both sides are written
// in one transaction.
type AssignmentService struct {
	userRepo   repositories.IUserRepository
	thesisRepo repositories.IThesisRepository
	authz      *authz.AuthorizationService
	tx         transactor
	logger     zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	userRepo repositories.IUserRepository,
	thesisRepo repositories.IThesisRepository,
	authzService *authz.AuthorizationService,
	tx transactor,
	logger zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		userRepo:   userRepo,
		thesisRepo: thesisRepo,
		authz:      authzService,
		tx:         tx,
		logger:     logger,
	}
}

// AssignStaff binds, replaces or clears the staff member holding the given
// role for a student. A thesis already in flight follows the reassignment;
// its snapshot is only protected from standing-assignment changes that
// happen outside this call.
func (s *AssignmentService) AssignStaff(ctx context.Context, actorID int64, req *dto.AssignStaffRequest) error {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionAssignmentWrite, nil); err != nil {
		return err
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if !role.IsStaff() {
		return apperrors.NewValidationError("only supervisor, consultant and reviewer can be assigned")
	}

	student, err := s.userRepo.GetStudentByUserID(ctx, req.StudentID)
	if err != nil {
		return err
	}

	var next *models.User
	if req.StaffID != nil {
		next, err = s.userRepo.GetUserByID(ctx, *req.StaffID)
		if err != nil {
			return err
		}
		if !next.HasRole(role) {
			return apperrors.NewValidationError("staff member does not hold the requested role")
		}
	}

	var prev *models.User
	if slot := student.AssignmentFor(role); slot != nil && *slot != nil {
		prev, err = s.userRepo.GetUserByID(ctx, **slot)
		if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
	}

	thesis, err := s.thesisRepo.GetActiveByStudent(ctx, req.StudentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrThesisNotFound) {
			return err
		}
		thesis = nil
	}

	change, err := graph.Assign(role, student, thesis, prev, next)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.userRepo.UpdateStudentAssignmentsTx(ctx, tx, change.Student); err != nil {
			return err
		}
		if change.Thesis != nil {
			if err := s.thesisRepo.UpdateTx(ctx, tx, change.Thesis); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	event := s.logger.Info().
		Int64("actorID", actorID).
		Int64("studentID", req.StudentID).
		Str("role", string(role))
	if next != nil {
		event = event.Int64("staffID", next.ID)
	}
	event.Msg("Staff assignment updated")
	return nil
}
