package services

import (
	"context"

	authz "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/KNyathi/thesis-review-system-sub002/internal/db"
	pkgauth "github.com/KNyathi/thesis-review-system-sub002/internal/pkg/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/filestorage"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// transactor runs a function within a database transaction. Satisfied by
// *db.PostgresDB.
type transactor interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// Services holds all the service instances
type Services struct {
	AuthService       *AuthService
	UserService       *UserService
	AssignmentService *AssignmentService
	TopicService      *TopicService
	ThesisService     *ThesisService
	ReviewService     *ReviewService
}

// NewServices initializes all services
func NewServices(
	repos *repositories.Repositories,
	database *db.PostgresDB,
	jwtService *pkgauth.JWTService,
	storage filestorage.FileStorage,
	authzService *authz.AuthorizationService,
	logger zerolog.Logger,
) *Services {
	return &Services{
		AuthService:       NewAuthService(repos.UserRepository, jwtService, logger),
		UserService:       NewUserService(repos.UserRepository, authzService, logger),
		AssignmentService: NewAssignmentService(repos.UserRepository, repos.ThesisRepository, authzService, database, logger),
		TopicService:      NewTopicService(repos.UserRepository, repos.ThesisRepository, authzService, logger),
		ThesisService:     NewThesisService(repos.UserRepository, repos.ThesisRepository, authzService, storage, database, logger),
		ReviewService:     NewReviewService(repos.UserRepository, repos.ThesisRepository, authzService, storage, database, logger),
	}
}

// persistThesisTx writes a mutated thesis aggregate inside a transaction:
// freshly opened iterations, freshly appended reviews, the thesis row
// itself with its version check, and the denormalized status on the
// student row.
func persistThesisTx(
	ctx context.Context,
	tx pgx.Tx,
	theses repositories.IThesisRepository,
	users repositories.IUserRepository,
	t *models.Thesis,
) error {
	for i := range t.Iterations {
		iteration := &t.Iterations[i]
		if iteration.ID == 0 {
			iteration.ThesisID = t.ID
			if err := theses.CreateIterationTx(ctx, tx, iteration); err != nil {
				return err
			}
		}
		for j := range iteration.Reviews {
			review := &iteration.Reviews[j]
			if review.ID == 0 {
				review.IterationID = iteration.ID
				if err := theses.CreateReviewTx(ctx, tx, review); err != nil {
					return err
				}
			}
		}
	}

	if err := theses.UpdateTx(ctx, tx, t); err != nil {
		return err
	}

	return users.UpdateStudentThesisStatusTx(ctx, tx, t.StudentID, t.Status)
}
