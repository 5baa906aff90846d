package engine

import "errors"

// Domain errors surfaced to callers. The engine never retries internally;
// retry policy belongs to the caller.
var (
	ErrInsufficientQuestions = errors.New("referenced banks hold fewer questions than requested")
	ErrUnknownViolationType  = errors.New("violation type is not in the accepted set")
	ErrInvalidQuestionIndex  = errors.New("question index out of range")
	ErrSessionNotActive      = errors.New("session is not active")
	ErrAttemptNotFinalized   = errors.New("attempt is not finalized")
	ErrUnknownDecision       = errors.New("unknown review decision")
	ErrExecutionUnavailable  = errors.New("code execution service unavailable")
)
