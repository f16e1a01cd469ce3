package seed

import (
	"context"
	"errors"
	"time"

	appModels "github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	appRepos "github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// CreateDefaultData creates the default management accounts if they don't
// exist. Staff registrations need an approver, so at least one admin must
// always be present; the dean account covers faculty-scoped operations out
// of the box.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (management accounts)...")
	var finalErr error // To collect potential errors without stopping the process

	defaults := []*appModels.User{
		{
			Email:      "admin@thesis-review.app",
			Password:   "Admin123!",
			FirstName:  "System",
			LastName:   "Administrator",
			Role:       appModels.RoleAdmin,
			Faculty:    "Administration",
			IsActive:   true,
			IsApproved: true,
		},
		{
			Email:      "dean@thesis-review.app",
			Password:   "Dean123!",
			FirstName:  "Default",
			LastName:   "Dean",
			Role:       appModels.RoleDean,
			Faculty:    "Engineering",
			IsActive:   true,
			IsApproved: true,
		},
	}

	for _, user := range defaults {
		exists, err := userRepo.EmailExists(ctx, user.Email)
		if err != nil {
			lgr.Error().Err(err).Str("email", user.Email).Msg("Error checking if default user exists")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			lgr.Info().Str("email", user.Email).Msg("Default user already exists, skipping creation")
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			lgr.Error().Err(err).Str("email", user.Email).Msg("Error hashing default user password")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		user.Password = string(hashedPassword)
		user.CreatedAt = time.Now()
		user.UpdatedAt = time.Now()

		id, err := userRepo.CreateUser(ctx, user)
		if err != nil {
			lgr.Error().Err(err).Str("email", user.Email).Msg("Error creating default user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Int64("userID", id).Str("role", string(user.Role)).Msg("Default user created successfully")
	}

	return finalErr
}
