package router

import (
	"eden_passes_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the operator login routes. Nothing is mounted
// when authentication is disabled.
func SetupAuthRoutes(publicGroup, authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	if authHandler == nil {
		return
	}
	publicGroup.POST("/auth/login", authHandler.Login)
	authenticatedGroup.GET("/auth/me", authHandler.Me)
}

// SetupPassRoutes sets up the pass routes. Reads are public; writes go
// through the authenticated group.
func SetupPassRoutes(publicGroup, authenticatedGroup *gin.RouterGroup, passHandler *handlers.PassHandler) {
	passRoutes := publicGroup.Group("/passes")
	{
		passRoutes.GET("", passHandler.ListPasses)
		passRoutes.GET("/stats/overview", passHandler.PassStats)
		passRoutes.GET("/:id", passHandler.GetPass)
	}

	passWriteRoutes := authenticatedGroup.Group("/passes")
	{
		passWriteRoutes.POST("", passHandler.CreatePass)
		passWriteRoutes.PUT("/:id", passHandler.UpdatePass)
		passWriteRoutes.DELETE("/:id", passHandler.DeletePass)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(publicGroup, authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := publicGroup.Group("/customers")
	{
		customerRoutes.GET("", customerHandler.SearchCustomers)
		customerRoutes.GET("/stats/overview", customerHandler.CustomerStats)
		customerRoutes.GET("/:id", customerHandler.GetCustomer)
	}

	customerWriteRoutes := authenticatedGroup.Group("/customers")
	{
		customerWriteRoutes.POST("", customerHandler.CreateCustomer)
		customerWriteRoutes.PUT("/:id", customerHandler.UpdateCustomer)
		customerWriteRoutes.DELETE("/:id", customerHandler.DeleteCustomer)
	}
}
