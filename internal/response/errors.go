package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrLearnerAccess    ErrCode = "LEARNER_ACCESS_ONLY"
	ErrReviewerAccess   ErrCode = "REVIEWER_ACCESS_ONLY"
	ErrNotAttemptOwner  ErrCode = "NOT_ATTEMPT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Assessment engine ─────────────────────────────────────────────
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrUnknownViolationType  ErrCode = "UNKNOWN_VIOLATION_TYPE"
	ErrInvalidQuestionIndex  ErrCode = "INVALID_QUESTION_INDEX"
	ErrSessionNotActive      ErrCode = "SESSION_NOT_ACTIVE"
	ErrAttemptNotFinalized   ErrCode = "ATTEMPT_NOT_FINALIZED"
	ErrUnknownDecision       ErrCode = "UNKNOWN_DECISION"
	ErrExecutionUnavailable  ErrCode = "EXECUTION_UNAVAILABLE"
	ErrSpecNotActive         ErrCode = "SPEC_NOT_ACTIVE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrLearnerAccess:
		return "This resource is restricted to learners."
	case ErrReviewerAccess:
		return "This resource is restricted to reviewers."
	case ErrNotAttemptOwner:
		return "This attempt belongs to another learner."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Assessment engine ─────────────────────────────────────────────
	case ErrInsufficientQuestions:
		return "The referenced question banks hold fewer questions than the test requires."
	case ErrUnknownViolationType:
		return "The reported violation type is not recognized."
	case ErrInvalidQuestionIndex:
		return "The question index is outside this attempt's question list."
	case ErrSessionNotActive:
		return "This attempt session is not active."
	case ErrAttemptNotFinalized:
		return "This attempt has not been finalized yet."
	case ErrUnknownDecision:
		return "The review decision must be safe, warning, or violation."
	case ErrExecutionUnavailable:
		return "The code execution service is currently unavailable."
	case ErrSpecNotActive:
		return "No active test is configured for this certification and difficulty."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
