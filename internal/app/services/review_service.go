package services

import (
	"context"
	"mime/multipart"
	"time"

	authz "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/workflow"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/filestorage"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ReviewService runs the multi-role review cycle: per-iteration reviews,
// re-review requests, the supervisor's signature and the final evaluation.
type ReviewService struct {
	userRepo   repositories.IUserRepository
	thesisRepo repositories.IThesisRepository
	authz      *authz.AuthorizationService
	storage    filestorage.FileStorage
	tx         transactor
	logger     zerolog.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	userRepo repositories.IUserRepository,
	thesisRepo repositories.IThesisRepository,
	authzService *authz.AuthorizationService,
	storage filestorage.FileStorage,
	tx transactor,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		userRepo:   userRepo,
		thesisRepo: thesisRepo,
		authz:      authzService,
		storage:    storage,
		tx:         tx,
		logger:     logger,
	}
}

// SubmitReview records the acting staff member's review on the current
// iteration. The review is attributed to whichever of the actor's staff
// roles the thesis assignment names.
func (s *ReviewService) SubmitReview(ctx context.Context, actorID, thesisID int64, req *dto.SubmitReviewRequest) (*models.Thesis, error) {
	thesis, actor, err := s.authorize(ctx, actorID, thesisID, authz.ActionReviewSubmit)
	if err != nil {
		return nil, err
	}

	role, err := reviewingRole(actor, thesis)
	if err != nil {
		return nil, err
	}

	if err := workflow.SubmitReview(thesis, role, req.Comments, models.ReviewStatus(req.Status), time.Now()); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, thesis); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("thesisID", thesisID).
		Int64("actorID", actorID).
		Str("role", string(role)).
		Str("verdict", req.Status).
		Int("iteration", thesis.CurrentIteration).
		Msg("Review submitted")
	return thesis, nil
}

// RequestReReview opens the next review iteration, leaving all prior
// iterations as immutable history
func (s *ReviewService) RequestReReview(ctx context.Context, actorID, thesisID int64) (*models.Thesis, error) {
	thesis, _, err := s.authorize(ctx, actorID, thesisID, authz.ActionReReviewRequest)
	if err != nil {
		return nil, err
	}

	if err := workflow.RequestReReview(thesis, time.Now()); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, thesis); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("thesisID", thesisID).Int64("actorID", actorID).Int("iteration", thesis.CurrentIteration).Msg("Re-review requested")
	return thesis, nil
}

// SignIteration stores the signed review document on the current iteration.
// Evaluation is blocked until the iteration under evaluation is signed.
func (s *ReviewService) SignIteration(ctx context.Context, actorID, thesisID int64, fileHeader *multipart.FileHeader) (*models.Thesis, error) {
	thesis, _, err := s.authorize(ctx, actorID, thesisID, authz.ActionReviewSign)
	if err != nil {
		return nil, err
	}
	if fileHeader == nil {
		return nil, apperrors.NewValidationError("signed document is required")
	}

	signedPath, err := s.storage.SaveFileWithPath(fileHeader, "signed")
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrInternal, "failed to store signed document")
	}

	if err := workflow.Sign(thesis, signedPath, time.Now()); err != nil {
		_ = s.storage.DeleteFile(signedPath)
		return nil, err
	}

	iteration := thesis.ActiveIteration()
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if iteration.ID == 0 {
			iteration.ThesisID = thesis.ID
			if err := s.thesisRepo.CreateIterationTx(ctx, tx, iteration); err != nil {
				return err
			}
		} else if err := s.thesisRepo.UpdateIterationTx(ctx, tx, iteration); err != nil {
			return err
		}
		return s.thesisRepo.UpdateTx(ctx, tx, thesis)
	})
	if err != nil {
		_ = s.storage.DeleteFile(signedPath)
		return nil, err
	}

	s.logger.Info().Int64("thesisID", thesisID).Int64("actorID", actorID).Int("iteration", thesis.CurrentIteration).Msg("Iteration signed")
	return thesis, nil
}

// Evaluate records the final grade and closes the thesis
func (s *ReviewService) Evaluate(ctx context.Context, actorID, thesisID int64, req *dto.EvaluateRequest) (*models.Thesis, error) {
	thesis, _, err := s.authorize(ctx, actorID, thesisID, authz.ActionThesisEvaluate)
	if err != nil {
		return nil, err
	}

	if err := workflow.Evaluate(thesis, req.Grade, time.Now()); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, thesis); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("thesisID", thesisID).Int64("actorID", actorID).Str("grade", req.Grade).Msg("Thesis evaluated")
	return thesis, nil
}

func (s *ReviewService) authorize(ctx context.Context, actorID, thesisID int64, action authz.Action) (*models.Thesis, *models.User, error) {
	thesis, err := s.thesisRepo.GetByID(ctx, thesisID)
	if err != nil {
		return nil, nil, err
	}
	owner, err := s.userRepo.GetUserByID(ctx, thesis.StudentID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.authz.Require(authz.ActorFromUser(actor), action, authz.ResourceFromThesis(thesis, owner.Faculty)); err != nil {
		return nil, nil, err
	}
	return thesis, actor, nil
}

func (s *ReviewService) persist(ctx context.Context, thesis *models.Thesis) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return persistThesisTx(ctx, tx, s.thesisRepo, s.userRepo, thesis)
	})
}

// reviewingRole picks the actor's staff role named by the thesis
// assignments. Admins without an assignment review as the reviewer role.
func reviewingRole(actor *models.User, thesis *models.Thesis) (models.Role, error) {
	for _, role := range actor.EffectiveRoles() {
		if !role.IsStaff() {
			continue
		}
		slot := thesis.AssignmentFor(role)
		if slot != nil && *slot != nil && **slot == actor.ID {
			return role, nil
		}
	}
	if actor.HasRole(models.RoleAdmin) {
		return models.RoleReviewer, nil
	}
	return "", apperrors.NewCustomError(apperrors.ErrPermissionDenied, "you are not assigned to this thesis")
}
