package model

import (
	"github.com/google/uuid"
)

// QuestionType discriminates the two supported question kinds.
type QuestionType string

const (
	QuestionTypeMCQ  QuestionType = "MCQ"
	QuestionTypeCode QuestionType = "CODE"
)

// TestCase is a single input/expected-output pair for a code question.
// Hidden cases count toward the score but are never sent to learners.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Hidden         bool   `json:"hidden"`
}

// Question is a single bank question. MCQ questions use Options and
// CorrectIndex; code questions use Statement and TestCases. Questions are
// immutable values once stored; a bank's question list is only ever replaced
// wholesale.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	BankID       uuid.UUID    `json:"bank_id"`
	Title        string       `json:"title"`
	Type         QuestionType `json:"type"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex int          `json:"correct_index"`
	Statement    string       `json:"statement,omitempty"`
	TestCases    []TestCase   `json:"test_cases,omitempty"`
	Difficulty   string       `json:"difficulty"`
	Tags         []string     `json:"tags,omitempty"`
	OrderNum     int          `json:"order_num"`
}

// QuestionForLearner is the sanitized view sent to learners: the correct
// option index and hidden test cases are withheld.
type QuestionForLearner struct {
	ID         uuid.UUID    `json:"id"`
	Title      string       `json:"title"`
	Type       QuestionType `json:"type"`
	Options    []string     `json:"options,omitempty"`
	Statement  string       `json:"statement,omitempty"`
	TestCases  []TestCase   `json:"test_cases,omitempty"`
	Difficulty string       `json:"difficulty"`
}

// ForLearner strips grading material from a question.
func (q Question) ForLearner() QuestionForLearner {
	var visible []TestCase
	for _, tc := range q.TestCases {
		if !tc.Hidden {
			visible = append(visible, tc)
		}
	}
	return QuestionForLearner{
		ID:         q.ID,
		Title:      q.Title,
		Type:       q.Type,
		Options:    q.Options,
		Statement:  q.Statement,
		TestCases:  visible,
		Difficulty: q.Difficulty,
	}
}

// AddQuestionRequest is one question in a bank replace payload.
type AddQuestionRequest struct {
	Title        string     `json:"title" binding:"required,min=1,max=2000"`
	Type         string     `json:"type" binding:"required,oneof=MCQ CODE"`
	Options      []string   `json:"options" binding:"omitempty,min=2,dive,min=1"`
	CorrectIndex int        `json:"correct_index" binding:"min=0"`
	Statement    string     `json:"statement" binding:"omitempty,max=20000"`
	TestCases    []TestCase `json:"test_cases" binding:"omitempty,dive"`
	Difficulty   string     `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Tags         []string   `json:"tags" binding:"omitempty,dive,min=1"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing a bank's questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}
