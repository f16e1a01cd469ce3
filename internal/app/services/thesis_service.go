package services

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	authz "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/graph"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/workflow"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/filestorage"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ThesisService handles thesis submission and lifecycle reads
type ThesisService struct {
	userRepo   repositories.IUserRepository
	thesisRepo repositories.IThesisRepository
	authz      *authz.AuthorizationService
	storage    filestorage.FileStorage
	tx         transactor
	logger     zerolog.Logger
}

// NewThesisService creates a new ThesisService
func NewThesisService(
	userRepo repositories.IUserRepository,
	thesisRepo repositories.IThesisRepository,
	authzService *authz.AuthorizationService,
	storage filestorage.FileStorage,
	tx transactor,
	logger zerolog.Logger,
) *ThesisService {
	return &ThesisService{
		userRepo:   userRepo,
		thesisRepo: thesisRepo,
		authz:      authzService,
		storage:    storage,
		tx:         tx,
		logger:     logger,
	}
}

// SubmitThesis stores the uploaded document and runs the submission
// transition. On first submission the student's standing assignments are
// snapshotted onto the thesis; resubmission keeps the snapshot and the
// review history.
func (s *ThesisService) SubmitThesis(ctx context.Context, actorID int64, fileHeader *multipart.FileHeader) (*models.Thesis, error) {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionThesisSubmit, nil); err != nil {
		return nil, err
	}
	if fileHeader == nil {
		return nil, apperrors.NewValidationError("thesis file is required")
	}

	student, err := s.userRepo.GetStudentByUserID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	thesis, err := s.thesisRepo.GetActiveByStudent(ctx, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrThesisNotFound) {
			return nil, apperrors.NewInvalidStateError("thesis topic must be approved before submission")
		}
		return nil, err
	}

	filePath, err := s.storage.SaveFileWithPath(fileHeader, "theses")
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrInternal, "failed to store thesis file")
	}

	previousFile := thesis.FilePath
	firstSubmission := thesis.Status == models.ThesisNotSubmitted

	if err := workflow.Submit(thesis, filePath, time.Now()); err != nil {
		_ = s.storage.DeleteFile(filePath)
		return nil, err
	}

	if firstSubmission {
		holders, err := s.loadHolders(ctx, student.SupervisorID, student.ConsultantID, student.ReviewerID)
		if err != nil {
			_ = s.storage.DeleteFile(filePath)
			return nil, err
		}
		graph.Snapshot(student, thesis, holders)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return persistThesisTx(ctx, tx, s.thesisRepo, s.userRepo, thesis)
	})
	if err != nil {
		_ = s.storage.DeleteFile(filePath)
		return nil, err
	}

	// The replaced document is unreferenced once the transaction commits.
	if previousFile != nil && *previousFile != filePath {
		_ = s.storage.DeleteFile(*previousFile)
	}

	s.logger.Info().Int64("thesisID", thesis.ID).Int64("studentID", actorID).Int("iteration", thesis.CurrentIteration).Msg("Thesis submitted")
	return thesis, nil
}

// GetThesis returns a thesis with its review history, subject to the view
// relationship rules
func (s *ThesisService) GetThesis(ctx context.Context, actorID, thesisID int64) (*models.Thesis, error) {
	thesis, owner, err := s.loadThesisWithOwner(ctx, thesisID)
	if err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionThesisView, authz.ResourceFromThesis(thesis, owner.Faculty)); err != nil {
		return nil, err
	}

	return thesis, nil
}

// GetThesisFile returns the filesystem path of the thesis document, subject
// to the download relationship rules
func (s *ThesisService) GetThesisFile(ctx context.Context, actorID, thesisID int64) (string, error) {
	thesis, owner, err := s.loadThesisWithOwner(ctx, thesisID)
	if err != nil {
		return "", err
	}

	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return "", err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionThesisDownload, authz.ResourceFromThesis(thesis, owner.Faculty)); err != nil {
		return "", err
	}

	if thesis.FilePath == nil {
		return "", apperrors.NewNotFoundError("thesis has no submitted document")
	}

	fullPath := s.storage.GetFullPath(*thesis.FilePath)
	if fullPath == "" {
		return "", apperrors.NewNotFoundError("thesis document is missing from storage")
	}
	return fullPath, nil
}

// ListTheses returns all theses, optionally filtered by status. Management
// roles only.
func (s *ThesisService) ListTheses(ctx context.Context, actorID int64, status *models.ThesisStatus) ([]*models.Thesis, error) {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionThesisList, nil); err != nil {
		return nil, err
	}

	return s.thesisRepo.List(ctx, status)
}

// DeleteThesis removes a thesis, its review history and its stored
// documents, and resets the student's thesis status. Owner or admin only.
func (s *ThesisService) DeleteThesis(ctx context.Context, actorID, thesisID int64) error {
	thesis, owner, err := s.loadThesisWithOwner(ctx, thesisID)
	if err != nil {
		return err
	}

	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionThesisDelete, authz.ResourceFromThesis(thesis, owner.Faculty)); err != nil {
		return err
	}

	holders, err := s.loadHolders(ctx, thesis.SupervisorID, thesis.ConsultantID, thesis.ReviewerID)
	if err != nil {
		return err
	}
	holderList := make([]*models.User, 0, len(holders))
	for _, h := range holders {
		holderList = append(holderList, h)
	}
	graph.Detach(thesis, holderList...)

	// Collect document paths before the rows go away.
	var files []string
	if thesis.FilePath != nil {
		files = append(files, *thesis.FilePath)
	}
	for _, it := range thesis.Iterations {
		if it.SignedDocPath != nil {
			files = append(files, *it.SignedDocPath)
		}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.thesisRepo.DeleteTx(ctx, tx, thesisID); err != nil {
			return err
		}
		return s.userRepo.UpdateStudentThesisStatusTx(ctx, tx, thesis.StudentID, models.ThesisNotSubmitted)
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		_ = s.storage.DeleteFile(f)
	}

	s.logger.Info().Int64("thesisID", thesisID).Int64("actorID", actorID).Msg("Thesis deleted")
	return nil
}

func (s *ThesisService) loadThesisWithOwner(ctx context.Context, thesisID int64) (*models.Thesis, *models.User, error) {
	thesis, err := s.thesisRepo.GetByID(ctx, thesisID)
	if err != nil {
		return nil, nil, err
	}
	owner, err := s.userRepo.GetUserByID(ctx, thesis.StudentID)
	if err != nil {
		return nil, nil, err
	}
	return thesis, owner, nil
}

func (s *ThesisService) loadHolders(ctx context.Context, supervisorID, consultantID, reviewerID *int64) (map[models.Role]*models.User, error) {
	holders := make(map[models.Role]*models.User)
	ids := map[models.Role]*int64{
		models.RoleSupervisor: supervisorID,
		models.RoleConsultant: consultantID,
		models.RoleReviewer:   reviewerID,
	}
	for role, id := range ids {
		if id == nil {
			continue
		}
		holder, err := s.userRepo.GetUserByID(ctx, *id)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		holders[role] = holder
	}
	return holders, nil
}

// ToThesisResponse maps a thesis to its API representation
func ToThesisResponse(t *models.Thesis) dto.ThesisResponse {
	resp := dto.ThesisResponse{
		ID:                     t.ID,
		StudentID:              t.StudentID,
		Topic:                  t.Topic,
		TopicProposedBy:        string(t.TopicProposedBy),
		TopicStatus:            string(t.TopicStatus),
		TopicRejectionComments: t.TopicRejectionComments,
		Status:                 string(t.Status),
		FilePath:               t.FilePath,
		SupervisorID:           t.SupervisorID,
		ConsultantID:           t.ConsultantID,
		ReviewerID:             t.ReviewerID,
		FinalGrade:             t.FinalGrade,
		CurrentIteration:       t.CurrentIteration,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}

	for _, it := range t.Iterations {
		ir := dto.IterationResponse{
			Number:        it.Number,
			SignedDocPath: it.SignedDocPath,
			SignedAt:      it.SignedAt,
		}
		for _, rv := range it.Reviews {
			ir.Reviews = append(ir.Reviews, dto.ReviewResponse{
				Role:        string(rv.Role),
				Comments:    rv.Comments,
				Status:      string(rv.Status),
				SubmittedAt: rv.SubmittedAt,
			})
		}
		resp.Iterations = append(resp.Iterations, ir)
	}

	return resp
}
