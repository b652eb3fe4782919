package handlers

import (
	"net/http"

	"eden_passes_backend/internal/services"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

// CreateCustomer handles explicit customer creation.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateCustomer")
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateCustomer")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, customer)
}

// SearchCustomers handles the name search used by the pass form.
func (h *CustomerHandler) SearchCustomers(c *gin.Context) {
	customers, err := h.customerService.SearchCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, err, "SearchCustomers")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, customers)
}

// GetCustomer handles fetching a customer together with its passes.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "GetCustomer")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, customer)
}

// UpdateCustomer handles renaming a customer or changing its email.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req services.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateCustomer")
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "UpdateCustomer")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, customer)
}

func (h *CustomerHandler) CustomerStats(c *gin.Context) {
	stats, err := h.customerService.CustomerStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "CustomerStats")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, stats)
}

// DeleteCustomer handles deleting a customer without passes.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id := c.Param("id")
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteCustomer")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, gin.H{"id": id})
}
