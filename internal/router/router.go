package router

import (
	"net/http"

	"eden_passes_backend/internal/handlers"
	"eden_passes_backend/internal/metrics"
	"eden_passes_backend/internal/middleware"
	"eden_passes_backend/internal/ratelimit"
	"eden_passes_backend/internal/repositories"
	"eden_passes_backend/internal/services"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the HTTP layer is built from.
// Auth and Tokens are nil when operator authentication is disabled.
type Dependencies struct {
	Store           repositories.Store
	PassService     services.PassService
	CustomerService services.CustomerService
	AuthService     services.AuthService
	Tokens          *utils.TokenManager
	Limiter         ratelimit.Limiter
	Metrics         metrics.Recorder
	Gatherer        prometheus.Gatherer
	AllowedOrigins  []string
	Version         string
}

// New builds the engine with the global middleware stack and all routes.
func New(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.LogWarn("Recovered from panic", map[string]interface{}{"panic": recovered, "request_id": utils.RequestID(c)})
		utils.RespondInternalError(c)
	}))
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())
	engine.Use(middleware.Metrics(deps.Metrics))
	engine.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	Setup(engine, deps)
	return engine
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"}
	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Version)
	passHandler := handlers.NewPassHandler(deps.PassService)
	customerHandler := handlers.NewCustomerHandler(deps.CustomerService)

	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/ping", healthHandler.Ping)
	if deps.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// /api/v1 is canonical; /api keeps the paths of the first API version working.
	for _, prefix := range []string{"/api/v1", "/api"} {
		api := engine.Group(prefix)
		if deps.Limiter != nil {
			api.Use(middleware.RateLimit(deps.Limiter))
		}

		var authHandler *handlers.AuthHandler
		writes := api.Group("")
		if deps.AuthService != nil && deps.Tokens != nil {
			authHandler = handlers.NewAuthHandler(deps.AuthService)
			writes.Use(middleware.AuthMiddleware(deps.Tokens), middleware.RoleAuthMiddleware(services.OperatorRole))
		}

		SetupAuthRoutes(api, writes, authHandler)
		SetupPassRoutes(api, writes, passHandler)
		SetupCustomerRoutes(api, writes, customerHandler)
	}

	engine.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found", nil))
	})
}
