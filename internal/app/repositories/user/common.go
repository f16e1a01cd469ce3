package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/dberrors"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/logger"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles common user database operations
type Repository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRepository creates a new Repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"id", "email", "password", "first_name", "last_name",
	"role", "roles", "faculty", "is_active", "is_approved",
	"created_at", "updated_at",
}

// CreateUser creates a new user and returns the generated id
func (r *Repository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "role", "roles", "faculty", "is_active", "is_approved").
		Values(user.Email, user.Password, user.FirstName, user.LastName,
			string(user.Role), rolesToStrings(user.Roles), user.Faculty, user.IsActive, user.IsApproved).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			logger.Warn().Str("email", user.Email).Msg("Attempted to create user with duplicate email")
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return id, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	return r.scanOne(ctx, sql, args)
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user by email query: %w", err)
	}

	return r.scanOne(ctx, sql, args)
}

// EmailExists checks if an email already exists
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}

	return exists, nil
}

// ListUsers retrieves users, optionally filtered by role. The filter matches
// the primary role or any secondary role.
func (r *Repository) ListUsers(ctx context.Context, role *models.Role) ([]*models.User, error) {
	builder := r.sb.Select(userColumns...).
		From("users").
		OrderBy("id")

	if role != nil {
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{"role": string(*role)},
			squirrel.Expr("? = ANY(roles)", string(*role)),
		})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// SetApproved updates the admin-approval flag of a staff account
func (r *Repository) SetApproved(ctx context.Context, userID int64, approved bool) error {
	sql, args, err := r.sb.Update("users").
		Set("is_approved", approved).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build approve user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating user approval")
		return fmt.Errorf("error updating user approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	logger.Info().Int64("userID", userID).Bool("approved", approved).Msg("User approval updated")
	return nil
}

// SetActive updates the active flag of an account
func (r *Repository) SetActive(ctx context.Context, userID int64, active bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`,
		active, userID)
	if err != nil {
		return fmt.Errorf("error updating user active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (r *Repository) scanOne(ctx context.Context, sql string, args []interface{}) (*models.User, error) {
	row := r.db.QueryRow(ctx, sql, args...)
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

func scanUserRow(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var roleRaw string
	var rolesRaw []string

	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
		&roleRaw, &rolesRaw, &user.Faculty, &user.IsActive, &user.IsApproved,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	user.Role = models.Role(roleRaw)
	user.Roles = stringsToRoles(rolesRaw)
	return user, nil
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func stringsToRoles(raw []string) []models.Role {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.Role, 0, len(raw))
	for _, s := range raw {
		out = append(out, models.Role(s))
	}
	return out
}
