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

// StudentRepository handles student profile database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var studentColumns = []string{
	"id", "user_id", "student_number",
	"supervisor_id", "consultant_id", "reviewer_id", "thesis_status",
}

// CreateStudent creates a new student profile
func (r *StudentRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("user_id", "student_number", "thesis_status").
		Values(student.UserID, student.StudentNumber, string(models.ThesisNotSubmitted)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_student_number_key") {
			logger.Warn().Str("studentNumber", student.StudentNumber).Msg("Attempted to create student with duplicate student number")
			return apperrors.ErrStudentNumberAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", student.UserID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	student.ThesisStatus = models.ThesisNotSubmitted
	logger.Info().Int64("userID", student.UserID).Str("studentNumber", student.StudentNumber).Msg("Student created successfully")
	return nil
}

// GetStudentByUserID retrieves a student profile by user ID
func (r *StudentRepository) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	return scanStudent(r.db.QueryRow(ctx, sql, args...))
}

// StudentNumberExists checks if a student number is already taken
func (r *StudentRepository) StudentNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE student_number = $1)`,
		number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking student number existence: %w", err)
	}

	return exists, nil
}

// UpdateAssignmentsTx persists the student's standing staff assignments
// within an existing transaction.
func (r *StudentRepository) UpdateAssignmentsTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	sql, args, err := r.sb.Update("students").
		Set("supervisor_id", student.SupervisorID).
		Set("consultant_id", student.ConsultantID).
		Set("reviewer_id", student.ReviewerID).
		Where(squirrel.Eq{"user_id": student.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update assignments query: %w", err)
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", student.UserID).Msg("Error updating student assignments")
		return fmt.Errorf("error updating student assignments: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// UpdateThesisStatusTx updates the denormalized thesis status on the student
// row within an existing transaction.
func (r *StudentRepository) UpdateThesisStatusTx(ctx context.Context, tx pgx.Tx, userID int64, status models.ThesisStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE students SET thesis_status = $1 WHERE user_id = $2`,
		string(status), userID)
	if err != nil {
		return fmt.Errorf("error updating student thesis status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	student := &models.Student{}
	var statusRaw string

	err := row.Scan(
		&student.ID, &student.UserID, &student.StudentNumber,
		&student.SupervisorID, &student.ConsultantID, &student.ReviewerID, &statusRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	student.ThesisStatus = models.ThesisStatus(statusRaw)
	return student, nil
}
