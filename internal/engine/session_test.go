package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/google/uuid"
)

func newTestAttempt(questions int) *model.Attempt {
	a := &model.Attempt{
		ID:              uuid.New(),
		UserID:          7,
		CertID:          "cert-go",
		Difficulty:      "medium",
		PassPercentage:  70,
		DurationMinutes: 30,
	}
	for i := 0; i < questions; i++ {
		a.Questions = append(a.Questions, model.Question{
			ID:           uuid.New(),
			Type:         model.QuestionTypeMCQ,
			Options:      []string{"a", "b"},
			CorrectIndex: 0,
			OrderNum:     i,
		})
	}
	return a
}

func TestNewSessionActivates(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(3), now)

	snap := s.Snapshot()
	if snap.Status != model.AttemptStatusActive {
		t.Fatalf("status = %s, want ACTIVE", snap.Status)
	}
	if !snap.StartedAt.Equal(now) {
		t.Fatal("started_at not recorded")
	}
	if snap.BehaviorScore != 100 {
		t.Fatalf("behavior = %d, want 100", snap.BehaviorScore)
	}
	if want := now.Add(30 * time.Minute); !s.Deadline().Equal(want) {
		t.Fatalf("deadline = %v, want %v", s.Deadline(), want)
	}
}

func TestAnswerBounds(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(3), now)
	zero := 0

	for _, idx := range []int{-1, 3, 100} {
		err := s.Answer(idx, model.Answer{SelectedOption: &zero}, now)
		if err != ErrInvalidQuestionIndex {
			t.Fatalf("index %d: got %v, want ErrInvalidQuestionIndex", idx, err)
		}
	}
	if n := len(s.Snapshot().Answers); n != 0 {
		t.Fatalf("rejected answers mutated state: %d answers stored", n)
	}
}

func TestAnswerUpsertLastWriteWins(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(2), now)

	first, second := 0, 1
	if err := s.Answer(1, model.Answer{SelectedOption: &first}, now); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := s.Answer(1, model.Answer{SelectedOption: &second}, now.Add(time.Second)); err != nil {
		t.Fatalf("answer: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Answers) != 1 {
		t.Fatalf("got %d answers, want 1", len(snap.Answers))
	}
	if got := *snap.Answers[1].SelectedOption; got != 1 {
		t.Fatalf("stored option = %d, want the later write", got)
	}
}

func TestSubmitWinsOnceDuplicatesAreNoOps(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(1), now)

	if !s.Submit(now) {
		t.Fatal("first submit must win the transition")
	}
	if s.Submit(now) {
		t.Fatal("second submit must be a no-op")
	}
	if s.Snapshot().Status != model.AttemptStatusGrading {
		t.Fatal("session not in grading after submit")
	}
	if s.Snapshot().EndReason != model.EndReasonSubmitted {
		t.Fatal("end reason not recorded")
	}

	// Once finalized, further submits stay no-ops and the result is stable.
	if !s.Finalize(ScoreResult{FinalScore: 86, TestScore: 80, BehaviorScore: 100, Passed: true}, now) {
		t.Fatal("finalize failed")
	}
	before := s.Snapshot().FinalScore
	if s.Submit(now) {
		t.Fatal("submit after finalized must be a no-op")
	}
	if after := s.Snapshot().FinalScore; after != before {
		t.Fatalf("final score changed %d → %d on duplicate submit", before, after)
	}
}

func TestAnswerAfterSubmitFails(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(1), now)
	s.Submit(now)

	zero := 0
	if err := s.Answer(0, model.Answer{SelectedOption: &zero}, now); err != ErrSessionNotActive {
		t.Fatalf("got %v, want ErrSessionNotActive", err)
	}
}

func TestExpiryForcesGrading(t *testing.T) {
	start := time.Now()
	s := NewSession(newTestAttempt(1), start)
	late := start.Add(31 * time.Minute)

	// Lazy expiry on answer access.
	zero := 0
	if err := s.Answer(0, model.Answer{SelectedOption: &zero}, late); err != ErrSessionNotActive {
		t.Fatalf("got %v, want ErrSessionNotActive after deadline", err)
	}
	snap := s.Snapshot()
	if snap.Status != model.AttemptStatusGrading {
		t.Fatalf("status = %s, want GRADING", snap.Status)
	}
	if snap.EndReason != model.EndReasonTimeout {
		t.Fatalf("end reason = %s, want timeout", snap.EndReason)
	}

	// The sweeper path is idempotent against the lazy path.
	if s.ExpireIfDue(late) {
		t.Fatal("second expiry trigger must be a no-op")
	}
}

func TestExpireIfDueBeforeDeadlineIsNoOp(t *testing.T) {
	start := time.Now()
	s := NewSession(newTestAttempt(1), start)

	if s.ExpireIfDue(start.Add(29 * time.Minute)) {
		t.Fatal("expired before the deadline")
	}
	if s.Snapshot().Status != model.AttemptStatusActive {
		t.Fatal("premature sweep changed session state")
	}
}

func TestAutoFailForcesGradingWithoutSubmit(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(1), now)

	var out RecordOutcome
	var err error
	for i := 0; i < 3; i++ {
		out, err = s.RecordViolation(model.ViolationEvent{Type: model.ViolationTabSwitch, OccurredAt: now}, now)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	if !out.AutoFailTripped {
		t.Fatal("third restriction breach must trip forced submission")
	}
	if out.Status != model.AttemptStatusGrading {
		t.Fatalf("status = %s, want GRADING", out.Status)
	}
	if s.Snapshot().EndReason != model.EndReasonAutoFail {
		t.Fatal("end reason must be auto_fail")
	}
	// 3 tab switches at weight 3.
	if out.BehaviorScore != 91 {
		t.Fatalf("behavior = %d, want 91", out.BehaviorScore)
	}

	// Further events are rejected, not silently recorded.
	if _, err := s.RecordViolation(model.ViolationEvent{Type: model.ViolationNoFace, OccurredAt: now}, now); err != ErrSessionNotActive {
		t.Fatalf("got %v, want ErrSessionNotActive", err)
	}
}

func TestRecordViolationUnknownType(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(1), now)

	out, err := s.RecordViolation(model.ViolationEvent{Type: "telepathy", OccurredAt: now}, now)
	if err != ErrUnknownViolationType {
		t.Fatalf("got %v, want ErrUnknownViolationType", err)
	}
	if out.BehaviorScore != 100 || s.Snapshot().ViolationCount != 0 {
		t.Fatal("rejected event mutated session state")
	}
}

// Racing submit and expiry triggers: exactly one wins the transition.
func TestSubmitAndExpiryRaceSingleWinner(t *testing.T) {
	start := time.Now()
	late := start.Add(time.Hour)

	for run := 0; run < 50; run++ {
		s := NewSession(newTestAttempt(1), start)

		var wg sync.WaitGroup
		wins := make(chan bool, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			wins <- s.Submit(start)
		}()
		go func() {
			defer wg.Done()
			wins <- s.ExpireIfDue(late)
		}()
		wg.Wait()
		close(wins)

		winners := 0
		for won := range wins {
			if won {
				winners++
			}
		}
		if winners != 1 {
			t.Fatalf("run %d: %d triggers won the transition, want exactly 1", run, winners)
		}
	}
}

func TestRehydrateReplaysViolations(t *testing.T) {
	now := time.Now()
	attempt := newTestAttempt(2)
	attempt.Status = model.AttemptStatusActive
	attempt.StartedAt = now.Add(-5 * time.Minute)

	events := []model.ViolationEvent{
		{Type: model.ViolationTabSwitch, OccurredAt: now},
		{Type: model.ViolationPhoneDetected, OccurredAt: now},
	}
	s := Rehydrate(attempt, events)

	snap := s.Snapshot()
	if snap.BehaviorScore != 93 {
		t.Fatalf("behavior = %d, want 93", snap.BehaviorScore)
	}
	if snap.ViolationCount != 2 {
		t.Fatalf("count = %d, want 2", snap.ViolationCount)
	}
	if want := attempt.StartedAt.Add(30 * time.Minute); !s.Deadline().Equal(want) {
		t.Fatal("deadline must derive from the original started_at")
	}
}

func TestAbandonOnlyFromActive(t *testing.T) {
	now := time.Now()
	s := NewSession(newTestAttempt(1), now)

	if !s.Abandon(now) {
		t.Fatal("active session must be abandonable")
	}
	if s.Snapshot().Status != model.AttemptStatusAbandoned {
		t.Fatal("status not ABANDONED")
	}

	graded := NewSession(newTestAttempt(1), now)
	graded.Submit(now)
	if graded.Abandon(now) {
		t.Fatal("grading session must not be abandonable")
	}
}
