package engine

import (
	"testing"
	"time"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finalizedAttempt() *model.Attempt {
	finished := time.Now()
	return &model.Attempt{
		ID:             uuid.New(),
		UserID:         3,
		CertID:         "cert-go",
		PassPercentage: 70,
		TestScore:      80,
		BehaviorScore:  61, // heavily penalized session
		FinalScore:     74,
		Passed:         true,
		Status:         model.AttemptStatusFinalized,
		FinishedAt:     &finished,
	}
}

func TestApplyReviewDecisionMapping(t *testing.T) {
	tests := []struct {
		decision     model.ReviewDecision
		wantBehavior int
	}{
		{model.DecisionSafe, 100},
		{model.DecisionWarning, 90},
		{model.DecisionViolation, 70},
	}

	for _, tc := range tests {
		t.Run(string(tc.decision), func(t *testing.T) {
			attempt := finalizedAttempt()
			review, err := ApplyReview(attempt, tc.decision, "checked recording", "rev@certilearn", time.Now())
			require.NoError(t, err)

			assert.Equal(t, tc.wantBehavior, review.BehaviorOverride)
			assert.Equal(t, tc.wantBehavior, attempt.BehaviorScore)

			wantFinal, wantPassed := Combine(attempt.TestScore, tc.wantBehavior, attempt.PassPercentage)
			assert.Equal(t, wantFinal, attempt.FinalScore)
			assert.Equal(t, wantPassed, attempt.Passed)
		})
	}
}

func TestApplyReviewWarningOverridesRecordedViolations(t *testing.T) {
	// Regardless of how low the recorded behavior score was, a warning
	// decision pins it to 90 and re-derives the verdict.
	attempt := finalizedAttempt()
	attempt.BehaviorScore = 12
	attempt.FinalScore, attempt.Passed = Combine(attempt.TestScore, 12, attempt.PassPercentage)
	require.False(t, attempt.Passed)

	_, err := ApplyReview(attempt, model.DecisionWarning, "", "rev@certilearn", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 90, attempt.BehaviorScore)
	assert.Equal(t, 83, attempt.FinalScore) // round(80*0.7 + 90*0.3)
	assert.True(t, attempt.Passed)
}

func TestApplyReviewRejectsNonFinalized(t *testing.T) {
	for _, status := range []model.AttemptStatus{
		model.AttemptStatusActive,
		model.AttemptStatusGrading,
		model.AttemptStatusAbandoned,
	} {
		attempt := finalizedAttempt()
		attempt.Status = status
		_, err := ApplyReview(attempt, model.DecisionSafe, "", "rev", time.Now())
		assert.ErrorIs(t, err, ErrAttemptNotFinalized, "status %s", status)
		assert.Empty(t, attempt.Reviews)
	}
}

func TestApplyReviewRejectsUnknownDecision(t *testing.T) {
	attempt := finalizedAttempt()
	before := *attempt

	_, err := ApplyReview(attempt, model.ReviewDecision("lenient"), "", "rev", time.Now())
	require.ErrorIs(t, err, ErrUnknownDecision)
	assert.Equal(t, before.BehaviorScore, attempt.BehaviorScore)
	assert.Equal(t, before.FinalScore, attempt.FinalScore)
	assert.Empty(t, attempt.Reviews)
}

func TestApplyReviewAppendsAuditTrail(t *testing.T) {
	attempt := finalizedAttempt()

	first, err := ApplyReview(attempt, model.DecisionViolation, "clear breach", "alice", time.Now())
	require.NoError(t, err)
	second, err := ApplyReview(attempt, model.DecisionSafe, "appeal accepted", "bob", time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Prior reviews are superseded, never erased.
	require.Len(t, attempt.Reviews, 2)
	assert.Equal(t, first.ID, attempt.Reviews[0].ID)
	assert.Equal(t, second.ID, attempt.CurrentReview().ID)
	assert.Equal(t, "bob", attempt.CurrentReview().Reviewer)
	assert.Equal(t, 100, attempt.BehaviorScore)
}
