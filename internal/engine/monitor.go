package engine

import (
	"github.com/certilearn/assess-backend/internal/model"
)

// violationWeights is the fixed penalty table. Behavior score is
// max(0, 100 − Σ weight(type) × count(type)), so it is monotonically
// non-increasing over the life of a session.
var violationWeights = map[model.ViolationType]int{
	model.ViolationTabSwitch:     3,
	model.ViolationPhoneDetected: 4,
	model.ViolationMultipleFaces: 3,
	model.ViolationNoFace:        2,
	model.ViolationNoiseDetected: 2,
	model.ViolationCopyPaste:     2,
	model.ViolationLookingAway:   1,
	model.ViolationRightClick:    1,
}

// autoFailTypes are the tab-switch-class violations (deliberate client-side
// restriction breaches) that count toward forced submission.
var autoFailTypes = map[model.ViolationType]struct{}{
	model.ViolationTabSwitch:  {},
	model.ViolationCopyPaste:  {},
	model.ViolationRightClick: {},
}

// AutoFailThreshold is the number of auto-fail-eligible violations that
// forces an active session into grading.
const AutoFailThreshold = 3

// Monitor ingests integrity events for one attempt and maintains the
// running tally and derived behavior score. It is not internally locked:
// the owning Session serializes access (single-writer per attempt).
type Monitor struct {
	events       []model.ViolationEvent
	tally        map[model.ViolationType]int
	score        int
	autoFailHits int
}

// NewMonitor creates an empty monitor with a perfect behavior score.
func NewMonitor() *Monitor {
	return &Monitor{
		tally: make(map[model.ViolationType]int),
		score: 100,
	}
}

// RestoreMonitor rebuilds a monitor from previously recorded events, e.g.
// when rehydrating a session after a restart. Unknown types in the stored
// stream are skipped rather than failing the whole restore.
func RestoreMonitor(events []model.ViolationEvent) *Monitor {
	m := NewMonitor()
	for _, ev := range events {
		_ = m.Record(ev)
	}
	return m
}

// Record appends one event and recomputes the behavior score. Events with a
// type outside the fixed enumerated set are rejected with
// ErrUnknownViolationType and leave the monitor untouched.
func (m *Monitor) Record(ev model.ViolationEvent) error {
	if !model.KnownViolationType(ev.Type) {
		return ErrUnknownViolationType
	}

	m.events = append(m.events, ev)
	m.tally[ev.Type]++
	if _, ok := autoFailTypes[ev.Type]; ok {
		m.autoFailHits++
	}

	penalty := 0
	for t, n := range m.tally {
		penalty += violationWeights[t] * n
	}
	m.score = 100 - penalty
	if m.score < 0 {
		m.score = 0
	}
	return nil
}

// Score returns the current behavior score, always in [0, 100].
func (m *Monitor) Score() int {
	return m.score
}

// ViolationCount returns the total number of recorded events.
func (m *Monitor) ViolationCount() int {
	return len(m.events)
}

// AutoFailCount returns how many auto-fail-eligible events were recorded.
func (m *Monitor) AutoFailCount() int {
	return m.autoFailHits
}

// AutoFailTriggered reports whether the forced-submission threshold has
// been crossed.
func (m *Monitor) AutoFailTriggered() bool {
	return m.autoFailHits >= AutoFailThreshold
}

// Events returns a copy of the append-only event log, in arrival order.
func (m *Monitor) Events() []model.ViolationEvent {
	out := make([]model.ViolationEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Tally returns a copy of the per-type counts.
func (m *Monitor) Tally() map[model.ViolationType]int {
	out := make(map[model.ViolationType]int, len(m.tally))
	for t, n := range m.tally {
		out[t] = n
	}
	return out
}
