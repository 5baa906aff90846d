package engine

import (
	"sync"
	"time"

	"github.com/certilearn/assess-backend/internal/model"
)

// Session owns the authoritative mutable state of one active attempt:
// assembling → active → grading → finalized, with a terminal abandoned
// state. At most one Session exists per attempt id (see Registry), and all
// mutations run under the session mutex so concurrent violation reports and
// answer upserts observe a consistent violation count.
//
// The active → grading transition is compare-and-swap guarded: explicit
// submit, timer expiry, and the auto-fail threshold may race, but only the
// first trigger wins and the rest are no-ops.
type Session struct {
	mu      sync.Mutex
	attempt *model.Attempt
	monitor *Monitor
	deadline time.Time
}

// RecordOutcome reports the monitor state after one recorded event, plus
// whether this event pushed the session into grading.
type RecordOutcome struct {
	BehaviorScore   int
	ViolationCount  int
	Status          model.AttemptStatus
	AutoFailTripped bool
}

// NewSession activates an assembled attempt: records started_at and arms
// the duration timer. The attempt must carry its question snapshot already.
func NewSession(attempt *model.Attempt, now time.Time) *Session {
	attempt.Status = model.AttemptStatusActive
	attempt.StartedAt = now
	attempt.BehaviorScore = 100
	if attempt.Answers == nil {
		attempt.Answers = make(map[int]model.Answer)
	}

	return &Session{
		attempt:  attempt,
		monitor:  NewMonitor(),
		deadline: now.Add(time.Duration(attempt.DurationMinutes) * time.Minute),
	}
}

// Rehydrate rebuilds a session for a still-active attempt, e.g. after a
// server restart, replaying previously persisted violation events.
func Rehydrate(attempt *model.Attempt, events []model.ViolationEvent) *Session {
	if attempt.Answers == nil {
		attempt.Answers = make(map[int]model.Answer)
	}
	m := RestoreMonitor(events)
	attempt.BehaviorScore = m.Score()
	attempt.ViolationCount = m.ViolationCount()

	return &Session{
		attempt:  attempt,
		monitor:  m,
		deadline: attempt.StartedAt.Add(time.Duration(attempt.DurationMinutes) * time.Minute),
	}
}

// AttemptID returns the owned attempt's id without locking; the id is
// immutable.
func (s *Session) AttemptID() string {
	return s.attempt.ID.String()
}

// Deadline returns the wall-clock moment the session times out.
func (s *Session) Deadline() time.Time {
	return s.deadline
}

// RecordViolation appends one integrity event. Recording is a fast
// in-memory append and never blocks on external signal producers. Events
// against a non-active session fail with ErrSessionNotActive; timed-out
// sessions are moved to grading first so the caller can trigger scoring.
func (s *Session) RecordViolation(ev model.ViolationEvent, now time.Time) (RecordOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expireLocked(now) {
		return RecordOutcome{
			BehaviorScore:  s.attempt.BehaviorScore,
			ViolationCount: s.attempt.ViolationCount,
			Status:         s.attempt.Status,
		}, ErrSessionNotActive
	}
	if s.attempt.Status != model.AttemptStatusActive {
		return RecordOutcome{Status: s.attempt.Status}, ErrSessionNotActive
	}

	if err := s.monitor.Record(ev); err != nil {
		return RecordOutcome{
			BehaviorScore:  s.attempt.BehaviorScore,
			ViolationCount: s.attempt.ViolationCount,
			Status:         s.attempt.Status,
		}, err
	}

	s.attempt.BehaviorScore = s.monitor.Score()
	s.attempt.ViolationCount = s.monitor.ViolationCount()

	out := RecordOutcome{
		BehaviorScore:  s.attempt.BehaviorScore,
		ViolationCount: s.attempt.ViolationCount,
		Status:         s.attempt.Status,
	}

	if s.monitor.AutoFailTriggered() {
		if s.beginGradingLocked(model.EndReasonAutoFail) {
			out.AutoFailTripped = true
		}
		out.Status = s.attempt.Status
	}

	return out, nil
}

// Answer upserts the answer for one question index. Out-of-range indices
// fail with ErrInvalidQuestionIndex and never mutate state; answers against
// a non-active session fail with ErrSessionNotActive.
func (s *Session) Answer(index int, ans model.Answer, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expireLocked(now) || s.attempt.Status != model.AttemptStatusActive {
		return ErrSessionNotActive
	}
	if index < 0 || index >= len(s.attempt.Questions) {
		return ErrInvalidQuestionIndex
	}

	ans.Index = index
	ans.SavedAt = now
	s.attempt.Answers[index] = ans
	return nil
}

// Submit attempts the active → grading transition on behalf of an explicit
// client submit. Returns true if this call won the transition; duplicate
// submits against a grading or finalized session return false without error
// to tolerate network retries.
func (s *Session) Submit(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expireLocked(now) {
		return false
	}
	return s.beginGradingLocked(model.EndReasonSubmitted)
}

// ExpireIfDue moves a stale active session into grading with the timeout
// reason. Returns true if this call performed the transition.
func (s *Session) ExpireIfDue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expireLocked(now)
}

// Finalize records the scoring result: grading → finalized, sets
// finished_at. A session not in grading is left untouched.
func (s *Session) Finalize(result ScoreResult, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt.Status != model.AttemptStatusGrading {
		return false
	}

	s.attempt.QuestionResults = result.QuestionResults
	s.attempt.TestScore = result.TestScore
	s.attempt.BehaviorScore = result.BehaviorScore
	s.attempt.FinalScore = result.FinalScore
	s.attempt.Passed = result.Passed
	s.attempt.Status = model.AttemptStatusFinalized
	s.attempt.FinishedAt = &now
	return true
}

// Abandon marks a session abandoned. Used when an attempt can no longer be
// graded at all (e.g. its snapshot is unreadable); grading/finalized
// sessions are never abandoned.
func (s *Session) Abandon(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt.Status != model.AttemptStatusActive {
		return false
	}
	s.attempt.Status = model.AttemptStatusAbandoned
	s.attempt.FinishedAt = &now
	return true
}

// Snapshot returns a deep-enough copy of the attempt for read paths:
// answers and reviews are copied so callers never alias live state.
func (s *Session) Snapshot() model.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *s.attempt
	out.Answers = make(map[int]model.Answer, len(s.attempt.Answers))
	for i, a := range s.attempt.Answers {
		out.Answers[i] = a
	}
	out.Reviews = append([]model.AdminReview(nil), s.attempt.Reviews...)
	return out
}

// Remaining returns how much session time is left, floored at zero.
func (s *Session) Remaining(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt.Status != model.AttemptStatusActive {
		return 0
	}
	remaining := s.deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MonitorEvents returns the recorded violation events for this session.
func (s *Session) MonitorEvents() []model.ViolationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitor.Events()
}

// expireLocked transitions a past-deadline active session to grading.
// Caller holds the lock.
func (s *Session) expireLocked(now time.Time) bool {
	if s.attempt.Status != model.AttemptStatusActive {
		return false
	}
	if now.Before(s.deadline) {
		return false
	}
	return s.beginGradingLocked(model.EndReasonTimeout)
}

// beginGradingLocked is the single CAS point for active → grading. Caller
// holds the lock.
func (s *Session) beginGradingLocked(reason model.EndReason) bool {
	if s.attempt.Status != model.AttemptStatusActive {
		return false
	}
	s.attempt.Status = model.AttemptStatusGrading
	s.attempt.EndReason = reason
	return true
}
