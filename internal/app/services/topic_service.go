package services

import (
	"context"
	"errors"
	"time"

	authz "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/workflow"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// TopicService runs the topic negotiation between a student and their
// supervisor. The thesis record is created lazily, in not_submitted status,
// the first time either side proposes a topic.
type TopicService struct {
	userRepo   repositories.IUserRepository
	thesisRepo repositories.IThesisRepository
	authz      *authz.AuthorizationService
	logger     zerolog.Logger
}

// NewTopicService creates a new TopicService
func NewTopicService(
	userRepo repositories.IUserRepository,
	thesisRepo repositories.IThesisRepository,
	authzService *authz.AuthorizationService,
	logger zerolog.Logger,
) *TopicService {
	return &TopicService{
		userRepo:   userRepo,
		thesisRepo: thesisRepo,
		authz:      authzService,
		logger:     logger,
	}
}

// ProposeTopic records a topic proposal. Students propose for themselves;
// supervisors propose for an assigned student via req.StudentID.
func (s *TopicService) ProposeTopic(ctx context.Context, actorID int64, req *dto.ProposeTopicRequest) (*models.Thesis, error) {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	asSupervisor := req.StudentID != 0 && req.StudentID != actorID
	studentID := actorID
	if asSupervisor {
		studentID = req.StudentID
	}

	student, owner, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resource := authz.ResourceFromStudent(student, owner.Faculty)
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionTopicPropose, resource); err != nil {
		return nil, err
	}

	thesis, created, err := s.ensureThesis(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if asSupervisor {
		err = workflow.ProposeTopicBySupervisor(thesis, req.Topic, now)
	} else {
		err = workflow.ProposeTopicByStudent(thesis, req.Topic, now)
	}
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, thesis, created); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("actorID", actorID).Int64("studentID", studentID).Bool("bySupervisor", asSupervisor).Msg("Topic proposed")
	return thesis, nil
}

// DecideTopic records the supervisor's verdict on a student-proposed topic
func (s *TopicService) DecideTopic(ctx context.Context, actorID, studentID int64, req *dto.DecideTopicRequest) (*models.Thesis, error) {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	student, owner, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resource := authz.ResourceFromStudent(student, owner.Faculty)
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionTopicDecide, resource); err != nil {
		return nil, err
	}

	thesis, err := s.thesisRepo.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrThesisNotFound) {
			return nil, apperrors.NewInvalidStateError("no student topic proposal is pending")
		}
		return nil, err
	}

	if err := workflow.DecideTopic(thesis, req.Approve, req.Comments, time.Now()); err != nil {
		return nil, err
	}

	if err := s.thesisRepo.Update(ctx, thesis); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("actorID", actorID).Int64("studentID", studentID).Bool("approved", req.Approve).Msg("Topic decided")
	return thesis, nil
}

// RespondTopic records the student's response to a supervisor-proposed topic
func (s *TopicService) RespondTopic(ctx context.Context, actorID int64, req *dto.RespondTopicRequest) (*models.Thesis, error) {
	actor, err := s.userRepo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	student, owner, err := s.loadStudent(ctx, actorID)
	if err != nil {
		return nil, err
	}

	resource := authz.ResourceFromStudent(student, owner.Faculty)
	if err := s.authz.Require(authz.ActorFromUser(actor), authz.ActionTopicRespond, resource); err != nil {
		return nil, err
	}

	thesis, err := s.thesisRepo.GetActiveByStudent(ctx, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrThesisNotFound) {
			return nil, apperrors.NewInvalidStateError("no supervisor topic proposal is pending")
		}
		return nil, err
	}

	if err := workflow.RespondToTopic(thesis, req.Accept, req.Comments, time.Now()); err != nil {
		return nil, err
	}

	if err := s.thesisRepo.Update(ctx, thesis); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", actorID).Bool("accepted", req.Accept).Msg("Topic response recorded")
	return thesis, nil
}

func (s *TopicService) loadStudent(ctx context.Context, studentID int64) (*models.Student, *models.User, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	owner, err := s.userRepo.GetUserByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	return student, owner, nil
}

// ensureThesis returns the student's active thesis, creating an in-memory
// not_submitted one if none exists yet. The created flag tells save whether
// to insert or update.
func (s *TopicService) ensureThesis(ctx context.Context, studentID int64) (*models.Thesis, bool, error) {
	thesis, err := s.thesisRepo.GetActiveByStudent(ctx, studentID)
	if err == nil {
		return thesis, false, nil
	}
	if !errors.Is(err, apperrors.ErrThesisNotFound) {
		return nil, false, err
	}

	return &models.Thesis{
		StudentID:       studentID,
		TopicProposedBy: models.TopicByNone,
		TopicStatus:     models.TopicNone,
		Status:          models.ThesisNotSubmitted,
	}, true, nil
}

func (s *TopicService) save(ctx context.Context, thesis *models.Thesis, created bool) error {
	if created {
		return s.thesisRepo.Create(ctx, thesis)
	}
	return s.thesisRepo.Update(ctx, thesis)
}
