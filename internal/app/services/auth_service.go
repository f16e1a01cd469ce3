package services

import (
	"context"
	"errors"
	"strings"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	pkgauth "github.com/KNyathi/thesis-review-system-sub002/internal/pkg/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// AuthService handles registration and authentication
type AuthService struct {
	userRepo   repositories.IUserRepository
	jwtService *pkgauth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.IUserRepository, jwtService *pkgauth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a new account. Students are usable immediately; staff
// accounts start unapproved and stay locked out of review actions until an
// administrator approves them.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if role == models.RoleAdmin {
		return nil, apperrors.NewValidationError("administrator accounts cannot be self-registered")
	}

	secondary := make([]models.Role, 0, len(req.Roles))
	for _, raw := range req.Roles {
		r, err := models.ParseRole(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		if r == models.RoleAdmin {
			return nil, apperrors.NewValidationError("administrator cannot be a secondary role")
		}
		if r != role {
			secondary = append(secondary, r)
		}
	}

	if role == models.RoleStudent && strings.TrimSpace(req.StudentNumber) == "" {
		return nil, apperrors.NewValidationError("student number is required for student accounts")
	}

	hashed, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, apperrors.ErrInternal
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
		Roles:     secondary,
		Faculty:   strings.TrimSpace(req.Faculty),
		IsActive:  true,
		// Students need no vetting; staff wait for an administrator.
		IsApproved: role == models.RoleStudent,
	}

	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if role == models.RoleStudent {
		student := &models.Student{
			UserID:        id,
			StudentNumber: strings.TrimSpace(req.StudentNumber),
			ThesisStatus:  models.ThesisNotSubmitted,
		}
		if err := s.userRepo.CreateStudent(ctx, student); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int64("userID", id).Str("role", string(role)).Msg("User registered")
	return user, nil
}

// Login authenticates credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if !pkgauth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, expiresIn, _, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate token pair")
		return nil, apperrors.ErrInternal
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return &dto.LoginResponse{
		Token: dto.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    expiresIn,
			TokenType:    "Bearer",
		},
		User: ToUserResponse(user, nil),
	}, nil
}

func (s *AuthService) validateRegistration(req *dto.RegisterRequest) error {
	email := validation.NewStringValidation(strings.TrimSpace(req.Email)).
		WithPattern(validation.CompiledPatterns.Email)
	if !email.Validate() {
		return apperrors.NewValidationError("invalid email format")
	}
	if len(req.Password) < validation.PasswordMinLength {
		return apperrors.NewValidationError("password must be at least 8 characters long")
	}

	for _, name := range []string{req.FirstName, req.LastName} {
		nv := validation.NewStringValidation(strings.TrimSpace(name)).
			WithMinLength(validation.NameMinLength).
			WithMaxLength(validation.NameMaxLength)
		if !nv.Validate() {
			return apperrors.NewValidationError("first and last name must be between 2 and 100 characters")
		}
	}
	if strings.TrimSpace(req.Faculty) == "" {
		return apperrors.NewValidationError("faculty is required")
	}

	number := validation.NewStringValidation(strings.TrimSpace(req.StudentNumber)).
		WithRequired(false).
		WithPattern(validation.CompiledPatterns.StudentNumber)
	if !number.Validate() {
		return apperrors.NewValidationError("student number must be 8 digits")
	}
	return nil
}
