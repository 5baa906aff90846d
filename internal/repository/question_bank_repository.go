package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionBankRepository handles bank and question data access. Options,
// test cases, and tags are stored as JSONB documents.
type QuestionBankRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionBankRepository creates a new QuestionBankRepository.
func NewQuestionBankRepository(pool *pgxpool.Pool) *QuestionBankRepository {
	return &QuestionBankRepository{pool: pool}
}

// Create inserts a new empty bank.
func (r *QuestionBankRepository) Create(ctx context.Context, b *model.QuestionBank) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_banks (name, difficulty, topic)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		b.Name, b.Difficulty, b.Topic,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID retrieves a bank with its aggregate question count.
func (r *QuestionBankRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	err := r.pool.QueryRow(ctx,
		`SELECT b.id, b.name, b.difficulty, b.topic, b.created_at, b.updated_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.bank_id = b.id)
		 FROM question_banks b
		 WHERE b.id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Difficulty, &b.Topic, &b.CreatedAt, &b.UpdatedAt, &b.QuestionCount)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List retrieves all banks with their question counts, newest first.
func (r *QuestionBankRepository) List(ctx context.Context) ([]model.QuestionBank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.name, b.difficulty, b.topic, b.created_at, b.updated_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.bank_id = b.id)
		 FROM question_banks b
		 ORDER BY b.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		var b model.QuestionBank
		if err := rows.Scan(&b.ID, &b.Name, &b.Difficulty, &b.Topic, &b.CreatedAt, &b.UpdatedAt, &b.QuestionCount); err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// Delete removes a bank and its questions (cascade).
func (r *QuestionBankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM question_banks WHERE id = $1`, id)
	return err
}

// ReplaceQuestions replaces a bank's question list wholesale inside one
// transaction. Questions are immutable values; this is the only edit path.
func (r *QuestionBankRepository) ReplaceQuestions(ctx context.Context, bankID uuid.UUID, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE bank_id = $1`, bankID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	rows := make([][]interface{}, 0, len(questions))
	for i, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		cases, err := json.Marshal(q.TestCases)
		if err != nil {
			return fmt.Errorf("marshal test cases: %w", err)
		}
		tags, err := json.Marshal(q.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		rows = append(rows, []interface{}{
			uuid.New(), bankID, q.Title, string(q.Type), options, q.CorrectIndex,
			q.Statement, cases, q.Difficulty, tags, i,
		})
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"questions"},
		[]string{"id", "bank_id", "title", "type", "options", "correct_index", "statement", "test_cases", "difficulty", "tags", "order_num"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy questions: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE question_banks SET updated_at = NOW() WHERE id = $1`, bankID); err != nil {
		return fmt.Errorf("touch bank: %w", err)
	}

	return tx.Commit(ctx)
}

// ListQuestions retrieves a bank's questions in stored order.
func (r *QuestionBankRepository) ListQuestions(ctx context.Context, bankID uuid.UUID) ([]model.Question, error) {
	return r.queryQuestions(ctx,
		`SELECT id, bank_id, title, type, options, correct_index, statement, test_cases, difficulty, tags, order_num
		 FROM questions WHERE bank_id = $1
		 ORDER BY order_num`, bankID)
}

// ListQuestionsByBanks pools the questions of several banks, ordered by
// bank then stored order. Feeds the assembler.
func (r *QuestionBankRepository) ListQuestionsByBanks(ctx context.Context, bankIDs []uuid.UUID) ([]model.Question, error) {
	return r.queryQuestions(ctx,
		`SELECT id, bank_id, title, type, options, correct_index, statement, test_cases, difficulty, tags, order_num
		 FROM questions WHERE bank_id = ANY($1)
		 ORDER BY bank_id, order_num`, bankIDs)
}

func (r *QuestionBankRepository) queryQuestions(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var options, cases, tags []byte
		if err := rows.Scan(&q.ID, &q.BankID, &q.Title, &q.Type, &options, &q.CorrectIndex,
			&q.Statement, &cases, &q.Difficulty, &tags, &q.OrderNum); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		if err := json.Unmarshal(cases, &q.TestCases); err != nil {
			return nil, fmt.Errorf("unmarshal test cases: %w", err)
		}
		if err := json.Unmarshal(tags, &q.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
