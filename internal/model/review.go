package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewDecision is the fixed three-way override an authorized reviewer can
// apply to a finalized attempt. Free-form numeric overrides are deliberately
// not supported.
type ReviewDecision string

const (
	DecisionSafe      ReviewDecision = "safe"
	DecisionWarning   ReviewDecision = "warning"
	DecisionViolation ReviewDecision = "violation"
)

// AdminReview is one override record. Reviews are append-only; the current
// review is the most recently appended one, prior reviews remain queryable.
type AdminReview struct {
	ID               uuid.UUID      `json:"id"`
	AttemptID        uuid.UUID      `json:"attempt_id"`
	Decision         ReviewDecision `json:"decision"`
	Notes            string         `json:"notes,omitempty"`
	Reviewer         string         `json:"reviewer"`
	BehaviorOverride int            `json:"behavior_override"`
	ReviewedAt       time.Time      `json:"reviewed_at"`
}

// ReviewRequest is the payload for overriding a finalized attempt.
type ReviewRequest struct {
	Decision string `json:"decision" binding:"required,min=1,max=32"`
	Notes    string `json:"notes" binding:"omitempty,max=4000"`
}
