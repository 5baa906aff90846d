package repository

import (
	"context"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ViolationRecord is a queued proctoring event bound to its attempt, the
// shape the persistence worker batches.
type ViolationRecord struct {
	AttemptID uuid.UUID            `json:"attempt_id"`
	Event     model.ViolationEvent `json:"event"`
}

// ViolationRepository handles persisted proctoring events.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// BulkInsert writes a batch of violation records using CopyFrom.
func (r *ViolationRepository) BulkInsert(ctx context.Context, records []ViolationRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			uuid.New(),
			rec.AttemptID,
			string(rec.Event.Type),
			rec.Event.OccurredAt,
			rec.Event.Confidence,
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"attempt_violations"},
		[]string{"id", "attempt_id", "type", "occurred_at", "confidence"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// Insert writes a single violation record, the fallback path when a batch
// copy fails.
func (r *ViolationRepository) Insert(ctx context.Context, rec ViolationRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_violations (id, attempt_id, type, occurred_at, confidence)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), rec.AttemptID, rec.Event.Type, rec.Event.OccurredAt, rec.Event.Confidence,
	)
	return err
}

// ListByAttempt returns an attempt's events in occurrence order, the input
// for rehydrating a proctoring monitor after restart.
func (r *ViolationRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.ViolationEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, occurred_at, confidence
		 FROM attempt_violations
		 WHERE attempt_id = $1
		 ORDER BY occurred_at ASC`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ViolationEvent
	for rows.Next() {
		var ev model.ViolationEvent
		if err := rows.Scan(&ev.Type, &ev.OccurredAt, &ev.Confidence); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
