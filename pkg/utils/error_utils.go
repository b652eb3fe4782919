package utils

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request correlation id.
const RequestIDKey = "requestID"

// Standardized APIError response
type APIError struct {
	StatusCode int         `json:"-"`    // HTTP status code, not included in JSON response body
	Code       string      `json:"code"` // Application-specific error code
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// Envelope is the body shape of every successful API response.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorEnvelope is the body shape of every failed API response.
type ErrorEnvelope struct {
	Success   bool        `json:"success"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// RequestID returns the correlation id assigned by the request id middleware.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.StatusCode, ErrorEnvelope{
		Success:   false,
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		RequestID: RequestID(c),
	})
}

// RespondSuccess sends data wrapped in the success envelope.
func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		RequestID: RequestID(c),
	})
}

// Common Error Constants
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_ERROR"
	ErrCodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// IsValidEmail checks if a string is a valid email format.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// RespondValidationFailed returns a standard validation error
func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Validation failed", details))
}

// RespondInternalError hides the cause from the client.
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, "An internal server error occurred", nil))
}
