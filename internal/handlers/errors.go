package handlers

import (
	"errors"
	"net/http"

	"eden_passes_backend/internal/services"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// serviceError maps a service sentinel onto the error envelope.
type serviceError struct {
	err    error
	status int
	code   string
}

var serviceErrors = []serviceError{
	{services.ErrInvalidType, http.StatusBadRequest, "INVALID_TYPE"},
	{services.ErrConflictingDates, http.StatusBadRequest, "CONFLICTING_DATES"},
	{services.ErrDateRequired, http.StatusBadRequest, "DATE_REQUIRED"},
	{services.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
	{services.ErrEndBeforeStart, http.StatusBadRequest, "END_BEFORE_START"},
	{services.ErrCustomerRequired, http.StatusBadRequest, "CUSTOMER_REQUIRED"},
	{services.ErrAmbiguousCustomer, http.StatusBadRequest, "AMBIGUOUS_CUSTOMER"},
	{services.ErrInvalidName, http.StatusBadRequest, "INVALID_NAME"},
	{services.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
	{services.ErrCustomerNotFound, http.StatusNotFound, "CUSTOMER_NOT_FOUND"},
	{services.ErrPassNotFound, http.StatusNotFound, "PASS_NOT_FOUND"},
	{services.ErrCustomerExists, http.StatusConflict, "CUSTOMER_EXISTS"},
	{services.ErrCustomerHasPasses, http.StatusConflict, "CUSTOMER_HAS_PASSES"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, utils.ErrCodeUnauthorized},
}

// respondServiceError answers with the envelope registered for err. Unknown
// errors are logged and answered with a generic internal error.
func respondServiceError(c *gin.Context, err error, operation string) {
	for _, mapping := range serviceErrors {
		if errors.Is(err, mapping.err) {
			utils.LogDebug(operation+": rejected", map[string]interface{}{
				"code":       mapping.code,
				"error":      err.Error(),
				"request_id": utils.RequestID(c),
			})
			utils.RespondWithError(c, utils.NewAPIError(mapping.status, mapping.code, err.Error(), nil))
			return
		}
	}

	utils.LogError(err, operation+": unexpected error", map[string]interface{}{
		"request_id": utils.RequestID(c),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	})
	utils.RespondInternalError(c)
}

// respondBindError answers a body that could not be decoded.
func respondBindError(c *gin.Context, err error, operation string) {
	utils.LogDebug(operation+": failed to bind JSON", map[string]interface{}{"error": err.Error(), "request_id": utils.RequestID(c)})
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
}
