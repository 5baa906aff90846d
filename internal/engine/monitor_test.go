package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/certilearn/assess-backend/internal/model"
)

func event(t model.ViolationType) model.ViolationEvent {
	return model.ViolationEvent{Type: t, OccurredAt: time.Now()}
}

func TestMonitorWeightedPenalties(t *testing.T) {
	tests := []struct {
		name   string
		events []model.ViolationType
		want   int
	}{
		{"no violations", nil, 100},
		{"single tab switch", []model.ViolationType{model.ViolationTabSwitch}, 97},
		{"tab switch then phone", []model.ViolationType{model.ViolationTabSwitch, model.ViolationPhoneDetected}, 93},
		{"one of each light signal", []model.ViolationType{model.ViolationLookingAway, model.ViolationRightClick}, 98},
		{"repeated no face", []model.ViolationType{model.ViolationNoFace, model.ViolationNoFace, model.ViolationNoFace}, 94},
		{
			"heavy session floors at zero",
			repeatType(model.ViolationPhoneDetected, 30),
			0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMonitor()
			for _, typ := range tc.events {
				if err := m.Record(event(typ)); err != nil {
					t.Fatalf("record %s: %v", typ, err)
				}
			}
			if got := m.Score(); got != tc.want {
				t.Fatalf("score = %d, want %d", got, tc.want)
			}
			if got := m.ViolationCount(); got != len(tc.events) {
				t.Fatalf("count = %d, want %d", got, len(tc.events))
			}
		})
	}
}

func TestMonitorRejectsUnknownType(t *testing.T) {
	m := NewMonitor()
	if err := m.Record(event(model.ViolationType("screenshotting"))); err != ErrUnknownViolationType {
		t.Fatalf("got %v, want ErrUnknownViolationType", err)
	}
	if m.Score() != 100 || m.ViolationCount() != 0 {
		t.Fatal("rejected event must leave monitor untouched")
	}
}

// Core invariant: for any event sequence the score is non-increasing and
// stays within [0, 100].
func TestMonitorScoreMonotoneNonIncreasing(t *testing.T) {
	all := []model.ViolationType{
		model.ViolationLookingAway, model.ViolationMultipleFaces,
		model.ViolationNoFace, model.ViolationPhoneDetected,
		model.ViolationNoiseDetected, model.ViolationTabSwitch,
		model.ViolationCopyPaste, model.ViolationRightClick,
	}

	rng := rand.New(rand.NewSource(1))
	for run := 0; run < 20; run++ {
		m := NewMonitor()
		prev := m.Score()
		for i := 0; i < 200; i++ {
			typ := all[rng.Intn(len(all))]
			if err := m.Record(event(typ)); err != nil {
				t.Fatalf("record: %v", err)
			}
			cur := m.Score()
			if cur > prev {
				t.Fatalf("score increased from %d to %d after %s", prev, cur, typ)
			}
			if cur < 0 || cur > 100 {
				t.Fatalf("score %d out of [0,100]", cur)
			}
			prev = cur
		}
	}
}

func TestMonitorAutoFailCountsOnlyRestrictionBreaches(t *testing.T) {
	m := NewMonitor()

	// Camera signals never count toward forced submission.
	for i := 0; i < 5; i++ {
		if err := m.Record(event(model.ViolationNoFace)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if m.AutoFailTriggered() {
		t.Fatal("camera-class events must not trip the auto-fail threshold")
	}

	for _, typ := range []model.ViolationType{model.ViolationTabSwitch, model.ViolationCopyPaste} {
		if err := m.Record(event(typ)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if m.AutoFailTriggered() {
		t.Fatalf("threshold tripped at %d auto-fail events", m.AutoFailCount())
	}

	if err := m.Record(event(model.ViolationRightClick)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !m.AutoFailTriggered() {
		t.Fatal("three restriction breaches must trip the threshold")
	}
}

func TestRestoreMonitorReplaysTally(t *testing.T) {
	m := NewMonitor()
	for _, typ := range []model.ViolationType{
		model.ViolationTabSwitch, model.ViolationPhoneDetected, model.ViolationTabSwitch,
	} {
		if err := m.Record(event(typ)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	restored := RestoreMonitor(m.Events())
	if restored.Score() != m.Score() {
		t.Fatalf("restored score %d, want %d", restored.Score(), m.Score())
	}
	if restored.ViolationCount() != m.ViolationCount() {
		t.Fatalf("restored count %d, want %d", restored.ViolationCount(), m.ViolationCount())
	}
	if restored.AutoFailCount() != m.AutoFailCount() {
		t.Fatalf("restored auto-fail count %d, want %d", restored.AutoFailCount(), m.AutoFailCount())
	}
}

func repeatType(t model.ViolationType, n int) []model.ViolationType {
	out := make([]model.ViolationType, n)
	for i := range out {
		out[i] = t
	}
	return out
}
