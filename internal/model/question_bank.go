package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBank is a stored, reusable collection of questions. Banks are
// referenced (not owned) by test specs; editing a bank never touches
// the question snapshots of already-started attempts.
type QuestionBank struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Difficulty    string    `json:"difficulty,omitempty"`
	Topic         string    `json:"topic,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateQuestionBankRequest is the payload for creating a bank.
type CreateQuestionBankRequest struct {
	Name       string `json:"name" binding:"required,min=3,max=255"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Topic      string `json:"topic" binding:"omitempty,max=255"`
}
