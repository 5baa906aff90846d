package websocket

import "time"

// ─── Feed events (Server → Reviewer client) ─────────────────────────

type Event string

const (
	EventViolation Event = "violation"
	EventStatus    Event = "status"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ViolationFeedEvent is pushed to subscribed reviewers each time a
// proctoring event is recorded against the watched attempt.
type ViolationFeedEvent struct {
	Event          Event     `json:"event"`
	AttemptID      string    `json:"attempt_id"`
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	Confidence     *float64  `json:"confidence,omitempty"`
	BehaviorScore  int       `json:"behavior_score"`
	ViolationCount int       `json:"violation_count"`
}

// StatusFeedEvent is pushed when the watched attempt changes lifecycle
// state, e.g. when it is finalized or auto-failed.
type StatusFeedEvent struct {
	Event     Event  `json:"event"`
	AttemptID string `json:"attempt_id"`
	Status    string `json:"status"`
	EndReason string `json:"end_reason,omitempty"`
}

// ErrorResponse is sent to the client before closing on a protocol error.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse answers a client ping keepalive.
type PongResponse struct {
	Event Event `json:"event"`
}

// ─── Actions (Reviewer client → Server) ─────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}
