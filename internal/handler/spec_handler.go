package handler

import (
	"errors"
	"net/http"

	"github.com/certilearn/assess-backend/internal/model"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/certilearn/assess-backend/internal/service"
	"github.com/certilearn/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// SpecHandler handles test spec authoring endpoints.
type SpecHandler struct {
	specService *service.SpecService
}

// NewSpecHandler creates a new SpecHandler.
func NewSpecHandler(specService *service.SpecService) *SpecHandler {
	return &SpecHandler{specService: specService}
}

// Upsert godoc
// PUT /api/v1/admin/specs
// Creates or replaces the spec for a (cert_id, difficulty) pair.
func (h *SpecHandler) Upsert(c *gin.Context) {
	var req model.UpsertTestSpecRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	spec, err := h.specService.Upsert(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A referenced bank does not exist.
			response.Fail(c, http.StatusBadRequest, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"spec": spec})
}

// Get godoc
// GET /api/v1/admin/specs/:cert_id/:difficulty
func (h *SpecHandler) Get(c *gin.Context) {
	spec, err := h.specService.GetByCert(c.Request.Context(), c.Param("cert_id"), c.Param("difficulty"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"spec": spec})
}

// List godoc
// GET /api/v1/admin/specs
func (h *SpecHandler) List(c *gin.Context) {
	specs, err := h.specService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"specs": specs})
}
