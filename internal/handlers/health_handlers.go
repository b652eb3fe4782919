package handlers

import (
	"context"
	"net/http"
	"time"

	"eden_passes_backend/internal/repositories"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and readiness.
type HealthHandler struct {
	store   repositories.Store
	version string
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store repositories.Store, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version, started: time.Now()}
}

func (h *HealthHandler) storeState(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		utils.LogWarn("Store ping failed", map[string]interface{}{"driver": h.store.Driver(), "error": err.Error()})
		return "disconnected"
	}
	return "connected"
}

// Health always answers 200 while the process serves requests.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptime":    time.Since(h.started).Seconds(),
		"version":   h.version,
		"store":     gin.H{"driver": h.store.Driver(), "state": h.storeState(c.Request.Context())},
		"requestId": utils.RequestID(c),
	})
}

// Ready answers 503 while the store is unreachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	state := h.storeState(c.Request.Context())
	status, label := http.StatusOK, "ready"
	if state != "connected" {
		status, label = http.StatusServiceUnavailable, "not-ready"
	}
	c.JSON(status, gin.H{
		"status":    label,
		"store":     state,
		"requestId": utils.RequestID(c),
	})
}

// Ping is a bare liveness probe.
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
