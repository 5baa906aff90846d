package repository

import (
	"context"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewerRepository handles reviewer account data access.
type ReviewerRepository struct {
	pool *pgxpool.Pool
}

// NewReviewerRepository creates a new ReviewerRepository.
func NewReviewerRepository(pool *pgxpool.Pool) *ReviewerRepository {
	return &ReviewerRepository{pool: pool}
}

// GetByID retrieves a reviewer by ID.
func (r *ReviewerRepository) GetByID(ctx context.Context, id int) (*model.Reviewer, error) {
	rv := &model.Reviewer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM reviewers
		 WHERE id = $1`, id,
	).Scan(&rv.ID, &rv.Email, &rv.Name, &rv.PasswordHash, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// GetByEmail retrieves a reviewer by their unique email.
func (r *ReviewerRepository) GetByEmail(ctx context.Context, email string) (*model.Reviewer, error) {
	rv := &model.Reviewer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM reviewers
		 WHERE email = $1`, email,
	).Scan(&rv.ID, &rv.Email, &rv.Name, &rv.PasswordHash, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// Create inserts a new reviewer.
func (r *ReviewerRepository) Create(ctx context.Context, rv *model.Reviewer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO reviewers (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		rv.Email, rv.Name, rv.PasswordHash,
	).Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
}
