package engine

import (
	"time"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
)

// decisionOverrides is the fixed three-way mapping from review decision to
// behavior score. This mapping, not a free-form numeric input, is the
// documented product policy.
var decisionOverrides = map[model.ReviewDecision]int{
	model.DecisionSafe:      100,
	model.DecisionWarning:   90,
	model.DecisionViolation: 70,
}

// ApplyReview overrides the behavior score of a finalized attempt and
// recomputes final score and verdict from the stored test score, appending
// a new AdminReview. Reviews are append-only: prior reviews are preserved
// for audit, the newest one is current.
//
// Fails with ErrAttemptNotFinalized before grading completes and with
// ErrUnknownDecision for any decision outside safe/warning/violation; the
// attempt is left untouched on error.
func ApplyReview(attempt *model.Attempt, decision model.ReviewDecision, notes, reviewer string, now time.Time) (*model.AdminReview, error) {
	if attempt.Status != model.AttemptStatusFinalized {
		return nil, ErrAttemptNotFinalized
	}

	override, ok := decisionOverrides[decision]
	if !ok {
		return nil, ErrUnknownDecision
	}

	attempt.BehaviorScore = override
	attempt.FinalScore, attempt.Passed = Combine(attempt.TestScore, override, attempt.PassPercentage)

	review := model.AdminReview{
		ID:               uuid.New(),
		AttemptID:        attempt.ID,
		Decision:         decision,
		Notes:            notes,
		Reviewer:         reviewer,
		BehaviorOverride: override,
		ReviewedAt:       now,
	}
	attempt.Reviews = append(attempt.Reviews, review)

	return &review, nil
}
