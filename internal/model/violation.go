package model

import "time"

// ViolationType enumerates the fixed set of integrity signals the engine
// accepts. Anything outside this set is rejected at record time.
type ViolationType string

const (
	ViolationLookingAway   ViolationType = "looking_away"
	ViolationMultipleFaces ViolationType = "multiple_faces"
	ViolationNoFace        ViolationType = "no_face"
	ViolationPhoneDetected ViolationType = "phone_detected"
	ViolationNoiseDetected ViolationType = "noise_detected"
	ViolationTabSwitch     ViolationType = "tab_switch"
	ViolationCopyPaste     ViolationType = "copy_paste"
	ViolationRightClick    ViolationType = "right_click"
)

// KnownViolationType reports whether t is in the fixed enumerated set.
func KnownViolationType(t ViolationType) bool {
	switch t {
	case ViolationLookingAway, ViolationMultipleFaces, ViolationNoFace,
		ViolationPhoneDetected, ViolationNoiseDetected, ViolationTabSwitch,
		ViolationCopyPaste, ViolationRightClick:
		return true
	}
	return false
}

// ViolationEvent is a single reported integrity signal. Events are
// append-only: never mutated or deleted.
type ViolationEvent struct {
	Type       ViolationType `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Confidence *float64      `json:"confidence,omitempty"`
}

// RecordViolationRequest is the payload for reporting one integrity event.
// Timestamp is client-reported unix seconds.
type RecordViolationRequest struct {
	Type       string   `json:"type" binding:"required,min=1,max=64"`
	Timestamp  int64    `json:"timestamp" binding:"required,min=1"`
	Confidence *float64 `json:"confidence" binding:"omitempty,min=0,max=1"`
}
