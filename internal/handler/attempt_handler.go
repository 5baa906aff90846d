package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/middleware"
	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/certilearn/assess-backend/internal/service"
	"github.com/certilearn/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttemptHandler handles learner-facing attempt endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// Start godoc
// POST /api/v1/attempts
// Assembles a test from the governing spec and opens a proctored session.
func (h *AttemptHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSpecNotAvailable):
			response.Fail(c, http.StatusNotFound, response.ErrSpecNotActive)
		case errors.Is(err, engine.ErrInsufficientQuestions):
			response.Fail(c, http.StatusConflict, response.ErrInsufficientQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// RecordViolation godoc
// POST /api/v1/attempts/:attempt_id/violations
// Reports one proctoring signal against the caller's active session.
func (h *AttemptHandler) RecordViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.attemptService.RecordViolation(c.Request.Context(), attemptID, claims.UserID, req)
	if err != nil {
		h.failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"behavior_score":  outcome.BehaviorScore,
		"violation_count": outcome.ViolationCount,
		"status":          outcome.Status,
		"auto_failed":     outcome.AutoFailTripped,
	})
}

// Answer godoc
// PUT /api/v1/attempts/:attempt_id/answers/:index
// Upserts the answer for one question index; last write wins.
func (h *AttemptHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestionIndex)
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.attemptService.Answer(c.Request.Context(), attemptID, claims.UserID, index, req); err != nil {
		h.failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// Submit godoc
// POST /api/v1/attempts/:attempt_id/submit
// Finishes the attempt and grades it. Safe to retry: a finalized attempt
// replays its stored result.
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		h.failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// Get godoc
// GET /api/v1/attempts/:attempt_id
// Returns the caller's attempt: sanitized questions while active, full
// scores once finalized.
func (h *AttemptHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		h.failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// List godoc
// GET /api/v1/attempts
// Returns the caller's attempt history, newest first.
func (h *AttemptHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempts, err := h.attemptService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// failAttemptErr maps service and engine errors onto API error codes.
func (h *AttemptHandler) failAttemptErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotAttemptOwner)
	case errors.Is(err, engine.ErrSessionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, engine.ErrUnknownViolationType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownViolationType)
	case errors.Is(err, engine.ErrInvalidQuestionIndex):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestionIndex)
	case errors.Is(err, engine.ErrExecutionUnavailable):
		response.Fail(c, http.StatusBadGateway, response.ErrExecutionUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
