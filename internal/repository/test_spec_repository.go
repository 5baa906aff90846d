package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestSpecRepository handles test spec data access. Specs are uniquely
// keyed by (cert_id, difficulty).
type TestSpecRepository struct {
	pool *pgxpool.Pool
}

// NewTestSpecRepository creates a new TestSpecRepository.
func NewTestSpecRepository(pool *pgxpool.Pool) *TestSpecRepository {
	return &TestSpecRepository{pool: pool}
}

// Upsert creates or replaces the spec for its (cert_id, difficulty) pair.
func (r *TestSpecRepository) Upsert(ctx context.Context, s *model.TestSpec) error {
	restrictions, err := json.Marshal(s.Restrictions)
	if err != nil {
		return fmt.Errorf("marshal restrictions: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO test_specs
		   (cert_id, difficulty, bank_ids, question_count, duration_minutes,
		    pass_percentage, randomize, restrictions, prerequisite_course_id, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (cert_id, difficulty) DO UPDATE SET
		   bank_ids = EXCLUDED.bank_ids,
		   question_count = EXCLUDED.question_count,
		   duration_minutes = EXCLUDED.duration_minutes,
		   pass_percentage = EXCLUDED.pass_percentage,
		   randomize = EXCLUDED.randomize,
		   restrictions = EXCLUDED.restrictions,
		   prerequisite_course_id = EXCLUDED.prerequisite_course_id,
		   active = EXCLUDED.active,
		   updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		s.CertID, s.Difficulty, s.BankIDs, s.QuestionCount, s.DurationMinutes,
		s.PassPercentage, s.Randomize, restrictions, s.PrerequisiteCourseID, s.Active,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByCert retrieves the spec governing one (cert_id, difficulty) pair.
func (r *TestSpecRepository) GetByCert(ctx context.Context, certID, difficulty string) (*model.TestSpec, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, cert_id, difficulty, bank_ids, question_count, duration_minutes,
		        pass_percentage, randomize, restrictions, prerequisite_course_id, active,
		        created_at, updated_at
		 FROM test_specs
		 WHERE cert_id = $1 AND difficulty = $2`, certID, difficulty))
}

// List retrieves all specs, newest first.
func (r *TestSpecRepository) List(ctx context.Context) ([]model.TestSpec, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, cert_id, difficulty, bank_ids, question_count, duration_minutes,
		        pass_percentage, randomize, restrictions, prerequisite_course_id, active,
		        created_at, updated_at
		 FROM test_specs
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []model.TestSpec
	for rows.Next() {
		s, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, *s)
	}
	return specs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TestSpecRepository) scanOne(row rowScanner) (*model.TestSpec, error) {
	s := &model.TestSpec{}
	var restrictions []byte
	err := row.Scan(&s.ID, &s.CertID, &s.Difficulty, &s.BankIDs, &s.QuestionCount,
		&s.DurationMinutes, &s.PassPercentage, &s.Randomize, &restrictions,
		&s.PrerequisiteCourseID, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(restrictions, &s.Restrictions); err != nil {
		return nil, fmt.Errorf("unmarshal restrictions: %w", err)
	}
	return s, nil
}
