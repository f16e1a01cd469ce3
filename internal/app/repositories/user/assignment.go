package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepository resolves the thesis back-references of staff users.
// The forward references live on the theses table; back-references are
// derived from them so the two can never drift apart in storage.
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListAssignedThesisIDs returns the ids of every thesis the user is assigned
// to in any staff capacity, ordered by thesis id.
func (r *AssignmentRepository) ListAssignedThesisIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM theses
		WHERE supervisor_id = $1 OR consultant_id = $1 OR reviewer_id = $1
		ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("error listing assigned theses: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning assigned thesis id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assigned thesis rows: %w", err)
	}

	return ids, nil
}
