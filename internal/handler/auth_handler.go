package handler

import (
	"errors"
	"net/http"

	"github.com/certilearn/assess-backend/internal/middleware"
	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/repository"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/certilearn/assess-backend/internal/service"
	"github.com/certilearn/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// AuthHandler handles reviewer authentication endpoints. Learner tokens are
// minted by the surrounding platform; this service only verifies them.
type AuthHandler struct {
	authService  *service.AuthService
	reviewerRepo *repository.ReviewerRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, reviewerRepo *repository.ReviewerRepository) *AuthHandler {
	return &AuthHandler{authService: authService, reviewerRepo: reviewerRepo}
}

// ReviewerLogin godoc
// POST /api/v1/auth/reviewer/login
func (h *AuthHandler) ReviewerLogin(c *gin.Context) {
	var req model.ReviewerLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	reviewer, err := h.reviewerRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(reviewer.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	token, err := h.authService.GenerateReviewerToken(reviewer.ID, reviewer.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.ReviewerLoginResponse{
		Token:    token,
		Reviewer: *reviewer,
	})
}

// GetReviewerProfile godoc
// GET /api/v1/auth/reviewer/me
func (h *AuthHandler) GetReviewerProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	reviewer, err := h.reviewerRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reviewer": reviewer})
}
