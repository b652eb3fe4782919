package handlers

import (
	"net/http"
	"strconv"

	"eden_passes_backend/internal/models"
	"eden_passes_backend/internal/services"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PassHandler holds the pass service.
type PassHandler struct {
	passService services.PassService
}

// NewPassHandler creates a new PassHandler.
func NewPassHandler(ps services.PassService) *PassHandler {
	return &PassHandler{passService: ps}
}

// CreatePass handles the registration of a new pass.
func (h *PassHandler) CreatePass(c *gin.Context) {
	var req services.CreatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreatePass")
		return
	}

	pass, err := h.passService.CreatePass(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreatePass")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, pass)
}

// ListPasses handles listing passes, newest first.
// Query: search (customer name substring), customerId, limit.
func (h *PassHandler) ListPasses(c *gin.Context) {
	filters := models.PassFilters{
		Search:     c.Query("search"),
		CustomerID: c.Query("customerId"),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			utils.RespondValidationFailed(c, "limit must be a positive integer")
			return
		}
		filters.Limit = limit
	}

	passes, err := h.passService.ListPasses(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "ListPasses")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, passes)
}

// GetPass handles fetching a single pass by ID.
func (h *PassHandler) GetPass(c *gin.Context) {
	pass, err := h.passService.GetPass(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "GetPass")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, pass)
}

// UpdatePass handles a partial update of a pass.
func (h *PassHandler) UpdatePass(c *gin.Context) {
	var req services.UpdatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdatePass")
		return
	}

	pass, err := h.passService.UpdatePass(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "UpdatePass")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, pass)
}

// PassStats handles the dashboard pass counters.
func (h *PassHandler) PassStats(c *gin.Context) {
	stats, err := h.passService.PassStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "PassStats")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, stats)
}

// DeletePass handles deleting a pass.
func (h *PassHandler) DeletePass(c *gin.Context) {
	id := c.Param("id")
	if err := h.passService.DeletePass(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeletePass")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, gin.H{"id": id})
}
