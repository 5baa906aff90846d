package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository handles attempt data access. The question snapshot,
// answers, and per-question results are stored as JSONB: the snapshot is
// written once at session start and never rewritten, which is what keeps a
// running attempt immune to concurrent bank edits.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new active attempt with its question snapshot.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	questions, err := json.Marshal(a.Questions)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts
		   (id, user_id, cert_id, difficulty, questions, pass_percentage,
		    duration_minutes, started_at, status, behavior_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.CertID, a.Difficulty, questions, a.PassPercentage,
		a.DurationMinutes, a.StartedAt, a.Status, a.BehaviorScore,
	)
	return err
}

// GetByID retrieves one attempt including its snapshot and answers.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var questions, answers, results []byte
	var endReason *string

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, cert_id, difficulty, questions, pass_percentage,
		        duration_minutes, started_at, finished_at, answers, violation_count,
		        behavior_score, question_results, test_score, final_score, passed,
		        status, end_reason
		 FROM attempts
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.CertID, &a.Difficulty, &questions, &a.PassPercentage,
		&a.DurationMinutes, &a.StartedAt, &a.FinishedAt, &answers, &a.ViolationCount,
		&a.BehaviorScore, &results, &a.TestScore, &a.FinalScore, &a.Passed,
		&a.Status, &endReason)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &a.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if answers != nil {
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if a.Answers == nil {
		a.Answers = make(map[int]model.Answer)
	}
	if results != nil {
		if err := json.Unmarshal(results, &a.QuestionResults); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	if endReason != nil {
		a.EndReason = model.EndReason(*endReason)
	}
	return a, nil
}

// Finalize persists a graded attempt in one write so partial scoring is
// never observable externally.
func (r *AttemptRepository) Finalize(ctx context.Context, a *model.Attempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	results, err := json.Marshal(a.QuestionResults)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, end_reason = $2, finished_at = $3, answers = $4,
		     question_results = $5, violation_count = $6, behavior_score = $7,
		     test_score = $8, final_score = $9, passed = $10
		 WHERE id = $11`,
		a.Status, string(a.EndReason), a.FinishedAt, answers,
		results, a.ViolationCount, a.BehaviorScore,
		a.TestScore, a.FinalScore, a.Passed, a.ID,
	)
	return err
}

// MarkAbandoned terminates an unfinishable attempt.
func (r *AttemptRepository) MarkAbandoned(ctx context.Context, id uuid.UUID, finishedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, finished_at = $2
		 WHERE id = $3 AND status = $4`,
		model.AttemptStatusAbandoned, finishedAt, id, model.AttemptStatusActive)
	return err
}

// ApplyReviewScores updates the scores produced by a review override. The
// review record itself is appended by the ReviewRepository; attempt history
// is otherwise append-only once finalized.
func (r *AttemptRepository) ApplyReviewScores(ctx context.Context, id uuid.UUID, behaviorScore, finalScore int, passed bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET behavior_score = $1, final_score = $2, passed = $3
		 WHERE id = $4 AND status = $5`,
		behaviorScore, finalScore, passed, id, model.AttemptStatusFinalized)
	return err
}

// ListActiveStartedBefore returns ids of active attempts whose deadline
// passed, for the expiry sweeper's database-backed pass.
func (r *AttemptRepository) ListActiveStartedBefore(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM attempts
		 WHERE status = $1
		   AND started_at + make_interval(mins => duration_minutes) <= $2`,
		model.AttemptStatusActive, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByUser retrieves a learner's attempts, newest first, without the
// heavy snapshot payloads.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, cert_id, difficulty, pass_percentage, duration_minutes,
		        started_at, finished_at, violation_count, behavior_score,
		        test_score, final_score, passed, status
		 FROM attempts
		 WHERE user_id = $1
		 ORDER BY started_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.CertID, &a.Difficulty, &a.PassPercentage,
			&a.DurationMinutes, &a.StartedAt, &a.FinishedAt, &a.ViolationCount,
			&a.BehaviorScore, &a.TestScore, &a.FinalScore, &a.Passed, &a.Status); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
