package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	pkgauth "github.com/KNyathi/thesis-review-system-sub002/internal/pkg/auth"
	"github.com/rs/zerolog"
)

func newTestAuthService(e *env) *AuthService {
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	return NewAuthService(e.users, jwtService, zerolog.Nop())
}

func registerReq() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:         "jane.doe@university.edu",
		Password:      "s3cretPass!",
		FirstName:     "Jane",
		LastName:      "Doe",
		Role:          "student",
		Faculty:       "Engineering",
		StudentNumber: "20251234",
	}
}

func TestRegister_StudentIsImmediatelyApproved(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	user, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.Equal(t, models.RoleStudent, user.Role)
	assert.True(t, user.IsApproved)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cretPass!", user.Password)

	student, err := e.users.GetStudentByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "20251234", student.StudentNumber)
	assert.Equal(t, models.ThesisNotSubmitted, student.ThesisStatus)
}

func TestRegister_StaffStartsUnapproved(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	req := registerReq()
	req.Role = "reviewer"
	req.StudentNumber = ""

	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, user.IsApproved)
}

func TestRegister_SecondaryRoles(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	req := registerReq()
	req.Role = "supervisor"
	req.Roles = []string{"reviewer", "supervisor"}
	req.StudentNumber = ""

	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	// The primary role is not duplicated into the secondary set.
	assert.Equal(t, []models.Role{models.RoleReviewer}, user.Roles)
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	req := registerReq()
	req.Role = "admin"

	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = registerReq()
	req.Role = "supervisor"
	req.Roles = []string{"admin"}
	_, err = svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRegister_StudentNumberRequired(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	req := registerReq()
	req.StudentNumber = ""

	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRegister_StudentNumberFormat(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	req := registerReq()
	req.StudentNumber = "12ab"

	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.StudentNumber = "20259999"
	_, err = svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "jane.doe@university.edu",
		Password: "s3cretPass!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, "jane.doe@university.edu", resp.User.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "jane.doe@university.edu",
		Password: "wrong",
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailHidesExistence(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@university.edu",
		Password: "whatever",
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuthService(e)

	user, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	require.NoError(t, e.users.SetActive(context.Background(), user.ID, false))

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "jane.doe@university.edu",
		Password: "s3cretPass!",
	})
	require.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}
