package handlers

import (
	"net/http"

	"eden_passes_backend/internal/middleware"
	"eden_passes_backend/internal/services"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login handles operator login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Login")
		return
	}

	authResp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Login")
		return
	}
	utils.LogInfo("Operator logged in", map[string]interface{}{"username": authResp.Username, "request_id": utils.RequestID(c)})
	utils.RespondSuccess(c, http.StatusOK, authResp)
}

// Me returns the operator identified by the access token.
func (h *AuthHandler) Me(c *gin.Context) {
	utils.RespondSuccess(c, http.StatusOK, gin.H{
		"username": c.GetString(middleware.UsernameKey),
		"role":     c.GetString(middleware.RoleKey),
	})
}
