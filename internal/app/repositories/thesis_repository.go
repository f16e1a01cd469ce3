package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/logger"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IThesisRepository defines the interface for thesis database operations
type IThesisRepository interface {
	Create(ctx context.Context, thesis *models.Thesis) error
	GetByID(ctx context.Context, id int64) (*models.Thesis, error)
	GetActiveByStudent(ctx context.Context, studentUserID int64) (*models.Thesis, error)
	List(ctx context.Context, status *models.ThesisStatus) ([]*models.Thesis, error)
	Update(ctx context.Context, thesis *models.Thesis) error
	UpdateTx(ctx context.Context, tx pgx.Tx, thesis *models.Thesis) error
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error
	CreateIterationTx(ctx context.Context, tx pgx.Tx, iteration *models.ReviewIteration) error
	UpdateIterationTx(ctx context.Context, tx pgx.Tx, iteration *models.ReviewIteration) error
	CreateReviewTx(ctx context.Context, tx pgx.Tx, review *models.Review) error
}

// ThesisRepository handles thesis, iteration and review persistence
type ThesisRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewThesisRepository creates a new ThesisRepository
func NewThesisRepository(db *pgxpool.Pool) *ThesisRepository {
	return &ThesisRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var thesisColumns = []string{
	"id", "student_id",
	"topic", "topic_proposed_by", "topic_status", "topic_rejection_comments",
	"status", "file_path", "supervisor_id", "consultant_id", "reviewer_id",
	"final_grade", "current_iteration", "version", "created_at", "updated_at",
}

// Create inserts a new thesis row and fills in the generated id
func (r *ThesisRepository) Create(ctx context.Context, thesis *models.Thesis) error {
	sql, args, err := r.sb.Insert("theses").
		Columns("student_id", "topic", "topic_proposed_by", "topic_status", "topic_rejection_comments",
			"status", "file_path", "supervisor_id", "consultant_id", "reviewer_id",
			"final_grade", "current_iteration", "version").
		Values(thesis.StudentID, thesis.Topic, string(thesis.TopicProposedBy), string(thesis.TopicStatus), thesis.TopicRejectionComments,
			string(thesis.Status), thesis.FilePath, thesis.SupervisorID, thesis.ConsultantID, thesis.ReviewerID,
			thesis.FinalGrade, thesis.CurrentIteration, 1).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create thesis SQL")
		return fmt.Errorf("failed to build create thesis query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&thesis.ID, &thesis.CreatedAt, &thesis.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", thesis.StudentID).Msg("Error executing create thesis query")
		return fmt.Errorf("error creating thesis: %w", err)
	}

	thesis.Version = 1
	logger.Info().Int64("thesisID", thesis.ID).Int64("studentID", thesis.StudentID).Msg("Thesis created")
	return nil
}

// GetByID retrieves a thesis with its full iteration and review history
func (r *ThesisRepository) GetByID(ctx context.Context, id int64) (*models.Thesis, error) {
	sql, args, err := r.sb.Select(thesisColumns...).
		From("theses").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get thesis query: %w", err)
	}

	thesis, err := scanThesis(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	if err := r.loadIterations(ctx, thesis); err != nil {
		return nil, err
	}

	return thesis, nil
}

// GetActiveByStudent retrieves the student's current thesis, with history.
// A student has at most one thesis at a time; the newest row wins.
func (r *ThesisRepository) GetActiveByStudent(ctx context.Context, studentUserID int64) (*models.Thesis, error) {
	sql, args, err := r.sb.Select(thesisColumns...).
		From("theses").
		Where(squirrel.Eq{"student_id": studentUserID}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get thesis by student query: %w", err)
	}

	thesis, err := scanThesis(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	if err := r.loadIterations(ctx, thesis); err != nil {
		return nil, err
	}

	return thesis, nil
}

// List retrieves theses, optionally filtered by status, without iteration
// history
func (r *ThesisRepository) List(ctx context.Context, status *models.ThesisStatus) ([]*models.Thesis, error) {
	builder := r.sb.Select(thesisColumns...).
		From("theses").
		OrderBy("id")

	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*status)})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list theses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list theses query")
		return nil, fmt.Errorf("error listing theses: %w", err)
	}
	defer rows.Close()

	var theses []*models.Thesis
	for rows.Next() {
		thesis, err := scanThesis(rows)
		if err != nil {
			return nil, err
		}
		theses = append(theses, thesis)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating thesis rows: %w", err)
	}

	return theses, nil
}

// Update persists thesis fields with an optimistic version check
func (r *ThesisRepository) Update(ctx context.Context, thesis *models.Thesis) error {
	return r.update(ctx, r.db, thesis)
}

// UpdateTx persists thesis fields within an existing transaction, with the
// same optimistic version check
func (r *ThesisRepository) UpdateTx(ctx context.Context, tx pgx.Tx, thesis *models.Thesis) error {
	return r.update(ctx, tx, thesis)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *ThesisRepository) update(ctx context.Context, db execer, thesis *models.Thesis) error {
	sql, args, err := r.sb.Update("theses").
		Set("topic", thesis.Topic).
		Set("topic_proposed_by", string(thesis.TopicProposedBy)).
		Set("topic_status", string(thesis.TopicStatus)).
		Set("topic_rejection_comments", thesis.TopicRejectionComments).
		Set("status", string(thesis.Status)).
		Set("file_path", thesis.FilePath).
		Set("supervisor_id", thesis.SupervisorID).
		Set("consultant_id", thesis.ConsultantID).
		Set("reviewer_id", thesis.ReviewerID).
		Set("final_grade", thesis.FinalGrade).
		Set("current_iteration", thesis.CurrentIteration).
		Set("version", thesis.Version+1).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": thesis.ID, "version": thesis.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update thesis query: %w", err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("thesisID", thesis.ID).Msg("Error executing update thesis query")
		return fmt.Errorf("error updating thesis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		logger.Warn().Int64("thesisID", thesis.ID).Int64("version", thesis.Version).Msg("Thesis update lost the version race")
		return apperrors.ErrConflict
	}

	thesis.Version++
	return nil
}

// DeleteTx removes a thesis and its review history within a transaction.
// Iterations and reviews cascade via foreign keys.
func (r *ThesisRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM theses WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("thesisID", id).Msg("Error deleting thesis")
		return fmt.Errorf("error deleting thesis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrThesisNotFound
	}

	logger.Info().Int64("thesisID", id).Msg("Thesis deleted")
	return nil
}

// CreateIterationTx inserts a review iteration within a transaction
func (r *ThesisRepository) CreateIterationTx(ctx context.Context, tx pgx.Tx, iteration *models.ReviewIteration) error {
	sql, args, err := r.sb.Insert("review_iterations").
		Columns("thesis_id", "number", "signed_doc_path", "signed_at").
		Values(iteration.ThesisID, iteration.Number, iteration.SignedDocPath, iteration.SignedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create iteration query: %w", err)
	}

	err = tx.QueryRow(ctx, sql, args...).Scan(&iteration.ID)
	if err != nil {
		logger.Error().Err(err).Int64("thesisID", iteration.ThesisID).Int("number", iteration.Number).Msg("Error creating review iteration")
		return fmt.Errorf("error creating review iteration: %w", err)
	}

	return nil
}

// UpdateIterationTx persists the signing fields of an iteration within a
// transaction
func (r *ThesisRepository) UpdateIterationTx(ctx context.Context, tx pgx.Tx, iteration *models.ReviewIteration) error {
	tag, err := tx.Exec(ctx, `
		UPDATE review_iterations
		SET signed_doc_path = $1, signed_at = $2
		WHERE id = $3`,
		iteration.SignedDocPath, iteration.SignedAt, iteration.ID)
	if err != nil {
		return fmt.Errorf("error updating review iteration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrIterationNotFound
	}

	return nil
}

// CreateReviewTx inserts a single role's review within a transaction
func (r *ThesisRepository) CreateReviewTx(ctx context.Context, tx pgx.Tx, review *models.Review) error {
	sql, args, err := r.sb.Insert("reviews").
		Columns("iteration_id", "role", "comments", "status", "submitted_at").
		Values(review.IterationID, string(review.Role), review.Comments, string(review.Status), review.SubmittedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create review query: %w", err)
	}

	err = tx.QueryRow(ctx, sql, args...).Scan(&review.ID)
	if err != nil {
		logger.Error().Err(err).Int64("iterationID", review.IterationID).Str("role", string(review.Role)).Msg("Error creating review")
		return fmt.Errorf("error creating review: %w", err)
	}

	return nil
}

func (r *ThesisRepository) loadIterations(ctx context.Context, thesis *models.Thesis) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, thesis_id, number, signed_doc_path, signed_at
		FROM review_iterations
		WHERE thesis_id = $1
		ORDER BY number`,
		thesis.ID)
	if err != nil {
		return fmt.Errorf("error loading review iterations: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]int)
	for rows.Next() {
		var it models.ReviewIteration
		if err := rows.Scan(&it.ID, &it.ThesisID, &it.Number, &it.SignedDocPath, &it.SignedAt); err != nil {
			return fmt.Errorf("error scanning review iteration: %w", err)
		}
		thesis.Iterations = append(thesis.Iterations, it)
		byID[it.ID] = len(thesis.Iterations) - 1
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating review iteration rows: %w", err)
	}

	if len(thesis.Iterations) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	reviewRows, err := r.db.Query(ctx, `
		SELECT id, iteration_id, role, comments, status, submitted_at
		FROM reviews
		WHERE iteration_id = ANY($1)
		ORDER BY submitted_at`,
		ids)
	if err != nil {
		return fmt.Errorf("error loading reviews: %w", err)
	}
	defer reviewRows.Close()

	for reviewRows.Next() {
		var rv models.Review
		var roleRaw, statusRaw string
		if err := reviewRows.Scan(&rv.ID, &rv.IterationID, &roleRaw, &rv.Comments, &statusRaw, &rv.SubmittedAt); err != nil {
			return fmt.Errorf("error scanning review: %w", err)
		}
		rv.Role = models.Role(roleRaw)
		rv.Status = models.ReviewStatus(statusRaw)
		idx := byID[rv.IterationID]
		thesis.Iterations[idx].Reviews = append(thesis.Iterations[idx].Reviews, rv)
	}
	if err := reviewRows.Err(); err != nil {
		return fmt.Errorf("error iterating review rows: %w", err)
	}

	return nil
}

func scanThesis(row pgx.Row) (*models.Thesis, error) {
	thesis := &models.Thesis{}
	var proposedByRaw, topicStatusRaw, statusRaw string

	err := row.Scan(
		&thesis.ID, &thesis.StudentID,
		&thesis.Topic, &proposedByRaw, &topicStatusRaw, &thesis.TopicRejectionComments,
		&statusRaw, &thesis.FilePath, &thesis.SupervisorID, &thesis.ConsultantID, &thesis.ReviewerID,
		&thesis.FinalGrade, &thesis.CurrentIteration, &thesis.Version, &thesis.CreatedAt, &thesis.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrThesisNotFound
		}
		logger.Error().Err(err).Msg("Error scanning thesis row")
		return nil, fmt.Errorf("error retrieving thesis: %w", err)
	}

	thesis.TopicProposedBy = models.TopicOrigin(proposedByRaw)
	thesis.TopicStatus = models.TopicStatus(topicStatusRaw)
	thesis.Status = models.ThesisStatus(statusRaw)
	return thesis, nil
}
