package handler

import (
	"errors"
	"net/http"

	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/middleware"
	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/certilearn/assess-backend/internal/service"
	"github.com/certilearn/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReviewHandler handles reviewer-facing attempt review endpoints.
type ReviewHandler struct {
	reviewService  *service.ReviewService
	attemptService *service.AttemptService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService, attemptService *service.AttemptService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, attemptService: attemptService}
}

// Apply godoc
// PUT /api/v1/admin/attempts/:attempt_id/review
// Records a decision against a finalized attempt and re-derives its score.
func (h *ReviewHandler) Apply(c *gin.Context) {
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

	var req model.ReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.reviewService.Apply(c.Request.Context(), attemptID, claims.Email, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, engine.ErrAttemptNotFinalized):
			response.Fail(c, http.StatusConflict, response.ErrAttemptNotFinalized)
		case errors.Is(err, engine.ErrUnknownDecision):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownDecision)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// List godoc
// GET /api/v1/admin/attempts/:attempt_id/reviews
// Returns the attempt's full review audit trail.
func (h *ReviewHandler) List(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reviews, err := h.reviewService.ListByAttempt(c.Request.Context(), attemptID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

// GetAttempt godoc
// GET /api/v1/admin/attempts/:attempt_id
// Returns the unredacted attempt for review tooling.
func (h *ReviewHandler) GetAttempt(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.GetFull(c.Request.Context(), attemptID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	reviews, err := h.reviewService.ListByAttempt(c.Request.Context(), attemptID)
	if err == nil {
		attempt.Reviews = reviews
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}
