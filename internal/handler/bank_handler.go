package handler

import (
	"errors"
	"net/http"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/certilearn/assess-backend/internal/service"
	"github.com/certilearn/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BankHandler handles reviewer-facing question bank management.
type BankHandler struct {
	bankService *service.BankService
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankService *service.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// Create godoc
// POST /api/v1/admin/banks
func (h *BankHandler) Create(c *gin.Context) {
	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.bankService.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"bank": bank})
}

// Get godoc
// GET /api/v1/admin/banks/:bank_id
func (h *BankHandler) Get(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bank, err := h.bankService.Get(c.Request.Context(), bankID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bank": bank})
}

// List godoc
// GET /api/v1/admin/banks
func (h *BankHandler) List(c *gin.Context) {
	banks, err := h.bankService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"banks": banks})
}

// Delete godoc
// DELETE /api/v1/admin/banks/:bank_id
func (h *BankHandler) Delete(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.bankService.Delete(c.Request.Context(), bankID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.NoContent(c)
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/banks/:bank_id/questions
// Replaces the bank's entire question list in one transaction.
func (h *BankHandler) ReplaceQuestions(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.bankService.ReplaceQuestions(c.Request.Context(), bankID, req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ListQuestions godoc
// GET /api/v1/admin/banks/:bank_id/questions
func (h *BankHandler) ListQuestions(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.bankService.ListQuestions(c.Request.Context(), bankID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}
