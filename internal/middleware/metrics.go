package middleware

import (
	"time"

	"eden_passes_backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics observes every request under its route pattern.
func Metrics(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
