package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt lifecycle states.
type AttemptStatus string

const (
	AttemptStatusAssembling AttemptStatus = "ASSEMBLING"
	AttemptStatusActive     AttemptStatus = "ACTIVE"
	AttemptStatusGrading    AttemptStatus = "GRADING"
	AttemptStatusFinalized  AttemptStatus = "FINALIZED"
	AttemptStatusAbandoned  AttemptStatus = "ABANDONED"
)

// EndReason records which trigger ended an active session.
type EndReason string

const (
	EndReasonSubmitted EndReason = "submitted"
	EndReasonTimeout   EndReason = "timeout"
	EndReasonAutoFail  EndReason = "auto_fail"
)

// Answer is one upserted answer record. Last write per question index wins.
// MCQ answers carry SelectedOption; code answers carry CodeSource.
type Answer struct {
	Index          int       `json:"index"`
	SelectedOption *int      `json:"selected_option,omitempty"`
	CodeSource     string    `json:"code_source,omitempty"`
	SavedAt        time.Time `json:"saved_at"`
}

// Attempt is one learner's instance of taking a test built from a TestSpec.
// Questions is an immutable snapshot taken at session start: concurrent edits
// to the source banks never affect a running attempt. PassPercentage is
// snapshotted from the governing spec for the same reason.
type Attempt struct {
	ID              uuid.UUID      `json:"id"`
	UserID          int            `json:"user_id"`
	CertID          string         `json:"cert_id"`
	Difficulty      string         `json:"difficulty"`
	Questions       []Question     `json:"questions"`
	PassPercentage  int            `json:"pass_percentage"`
	DurationMinutes int            `json:"duration_minutes"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      *time.Time     `json:"finished_at,omitempty"`
	Answers         map[int]Answer `json:"answers"`
	ViolationCount  int            `json:"violation_count"`
	BehaviorScore   int            `json:"behavior_score"`
	// QuestionResults holds per-question correctness, recorded once at
	// grading so review re-scoring never re-executes code questions.
	QuestionResults []bool        `json:"question_results,omitempty"`
	TestScore       float64       `json:"test_score"`
	FinalScore      int           `json:"final_score"`
	Passed          bool          `json:"passed"`
	Status          AttemptStatus `json:"status"`
	EndReason       EndReason     `json:"end_reason,omitempty"`
	Reviews         []AdminReview `json:"reviews,omitempty"`
}

// CurrentReview returns the most recently appended review, or nil.
func (a *Attempt) CurrentReview() *AdminReview {
	if len(a.Reviews) == 0 {
		return nil
	}
	return &a.Reviews[len(a.Reviews)-1]
}

// AttemptForLearner is the sanitized attempt view: grading material is
// withheld from question payloads.
type AttemptForLearner struct {
	ID               uuid.UUID            `json:"id"`
	CertID           string               `json:"cert_id"`
	Difficulty       string               `json:"difficulty"`
	Questions        []QuestionForLearner `json:"questions"`
	DurationMinutes  int                  `json:"duration_minutes"`
	StartedAt        time.Time            `json:"started_at"`
	FinishedAt       *time.Time           `json:"finished_at,omitempty"`
	RemainingSeconds float64              `json:"remaining_seconds"`
	BehaviorScore    int                  `json:"behavior_score"`
	ViolationCount   int                  `json:"violation_count"`
	TestScore        *float64             `json:"test_score,omitempty"`
	FinalScore       *int                 `json:"final_score,omitempty"`
	Passed           *bool                `json:"passed,omitempty"`
	Status           AttemptStatus        `json:"status"`
}

// ForLearner builds the sanitized view. Scores are only exposed once the
// attempt is finalized.
func (a *Attempt) ForLearner(remaining time.Duration) AttemptForLearner {
	questions := make([]QuestionForLearner, len(a.Questions))
	for i, q := range a.Questions {
		questions[i] = q.ForLearner()
	}

	view := AttemptForLearner{
		ID:               a.ID,
		CertID:           a.CertID,
		Difficulty:       a.Difficulty,
		Questions:        questions,
		DurationMinutes:  a.DurationMinutes,
		StartedAt:        a.StartedAt,
		FinishedAt:       a.FinishedAt,
		RemainingSeconds: remaining.Seconds(),
		BehaviorScore:    a.BehaviorScore,
		ViolationCount:   a.ViolationCount,
		Status:           a.Status,
	}

	if a.Status == AttemptStatusFinalized {
		ts := a.TestScore
		fs := a.FinalScore
		p := a.Passed
		view.TestScore = &ts
		view.FinalScore = &fs
		view.Passed = &p
	}

	return view
}

// StartAttemptRequest is the payload for starting a new attempt. The learner
// identity comes from the bearer credential, never the body.
type StartAttemptRequest struct {
	CertID     string `json:"cert_id" binding:"required,min=1,max=255"`
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
}

// AnswerRequest is the payload for upserting one answer.
type AnswerRequest struct {
	SelectedOption *int   `json:"selected_option" binding:"omitempty,min=0"`
	CodeSource     string `json:"code_source" binding:"omitempty,max=100000"`
}
