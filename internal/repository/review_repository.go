package repository

import (
	"context"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository handles the append-only review audit trail.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Insert appends one review. Reviews are never updated or deleted; the
// latest row per attempt is the effective decision.
func (r *ReviewRepository) Insert(ctx context.Context, rev *model.AdminReview) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_reviews
		   (id, attempt_id, decision, notes, reviewer, behavior_override, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rev.ID, rev.AttemptID, rev.Decision, rev.Notes, rev.Reviewer,
		rev.BehaviorOverride, rev.ReviewedAt,
	)
	return err
}

// ListByAttempt returns an attempt's reviews oldest first.
func (r *ReviewRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.AdminReview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, decision, notes, reviewer, behavior_override, reviewed_at
		 FROM attempt_reviews
		 WHERE attempt_id = $1
		 ORDER BY reviewed_at ASC`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []model.AdminReview
	for rows.Next() {
		var rev model.AdminReview
		if err := rows.Scan(&rev.ID, &rev.AttemptID, &rev.Decision, &rev.Notes,
			&rev.Reviewer, &rev.BehaviorOverride, &rev.ReviewedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
