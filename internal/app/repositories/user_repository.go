package repositories

import (
	"context"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context, role *models.Role) ([]*models.User, error)
	SetApproved(ctx context.Context, userID int64, approved bool) error
	SetActive(ctx context.Context, userID int64, active bool) error

	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
	StudentNumberExists(ctx context.Context, number string) (bool, error)
	UpdateStudentAssignmentsTx(ctx context.Context, tx pgx.Tx, student *models.Student) error
	UpdateStudentThesisStatusTx(ctx context.Context, tx pgx.Tx, userID int64, status models.ThesisStatus) error
}

// UserRepository combines all user-related repositories
type UserRepository struct {
	common     *user.Repository
	student    *user.StudentRepository
	assignment *user.AssignmentRepository
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		common:     user.NewRepository(db),
		student:    user.NewStudentRepository(db),
		assignment: user.NewAssignmentRepository(db),
	}
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	return r.common.CreateUser(ctx, u)
}

// GetUserByID retrieves a user by ID. Staff users are returned with their
// thesis back-references loaded.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := r.common.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.withAssignments(ctx, u)
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.common.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.withAssignments(ctx, u)
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.common.EmailExists(ctx, email)
}

// ListUsers retrieves users, optionally filtered by role
func (r *UserRepository) ListUsers(ctx context.Context, role *models.Role) ([]*models.User, error) {
	return r.common.ListUsers(ctx, role)
}

// SetApproved updates the admin-approval flag of a staff account
func (r *UserRepository) SetApproved(ctx context.Context, userID int64, approved bool) error {
	return r.common.SetApproved(ctx, userID, approved)
}

// SetActive updates the active flag of an account
func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	return r.common.SetActive(ctx, userID, active)
}

// CreateStudent creates a new student profile
func (r *UserRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	return r.student.CreateStudent(ctx, student)
}

// GetStudentByUserID retrieves a student profile by user ID
func (r *UserRepository) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return r.student.GetStudentByUserID(ctx, userID)
}

// StudentNumberExists checks if a student number is already taken
func (r *UserRepository) StudentNumberExists(ctx context.Context, number string) (bool, error) {
	return r.student.StudentNumberExists(ctx, number)
}

// UpdateStudentAssignmentsTx persists standing staff assignments within a transaction
func (r *UserRepository) UpdateStudentAssignmentsTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	return r.student.UpdateAssignmentsTx(ctx, tx, student)
}

// UpdateStudentThesisStatusTx updates the denormalized thesis status within a transaction
func (r *UserRepository) UpdateStudentThesisStatusTx(ctx context.Context, tx pgx.Tx, userID int64, status models.ThesisStatus) error {
	return r.student.UpdateThesisStatusTx(ctx, tx, userID, status)
}

func (r *UserRepository) withAssignments(ctx context.Context, u *models.User) (*models.User, error) {
	if !u.Role.IsStaff() {
		staff := false
		for _, role := range u.Roles {
			if role.IsStaff() {
				staff = true
				break
			}
		}
		if !staff {
			return u, nil
		}
	}

	ids, err := r.assignment.ListAssignedThesisIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.AssignedTheses = ids
	return u, nil
}
