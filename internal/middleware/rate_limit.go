package middleware

import (
	"net/http"
	"strconv"
	"time"

	"eden_passes_backend/internal/ratelimit"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RateLimit rejects clients that exceed the limiter's window with 429.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			utils.LogError(err, "Rate limiter unavailable", map[string]interface{}{"request_id": utils.RequestID(c)})
			c.Next()
			return
		}

		resetIn := int(time.Until(result.ResetAt).Round(time.Second).Seconds())
		if resetIn < 0 {
			resetIn = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(resetIn))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(resetIn))
			utils.RespondWithError(c, utils.NewAPIError(http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded,
				"Too many requests. Please try again later.", nil))
			return
		}
		c.Next()
	}
}
