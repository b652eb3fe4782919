package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"eden_passes_backend/internal/config"
	"eden_passes_backend/internal/database"
	"eden_passes_backend/internal/events"
	"eden_passes_backend/internal/metrics"
	"eden_passes_backend/internal/ratelimit"
	"eden_passes_backend/internal/router"
	"eden_passes_backend/internal/services"
	"eden_passes_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()

	limiter, err := newLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}
	defer limiter.Close()

	passService := services.NewPassService(store, recorder, publisher)
	customerService := services.NewCustomerService(store, recorder, publisher)

	deps := router.Dependencies{
		Store:           store,
		PassService:     passService,
		CustomerService: customerService,
		Limiter:         limiter,
		Metrics:         recorder,
		Gatherer:        registry,
		AllowedOrigins:  cfg.Server.CORSAllowedOrigins,
		Version:         cfg.Server.Version,
	}
	if cfg.Auth.Enabled {
		tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		deps.Tokens = tokens
		deps.AuthService = services.NewAuthService(cfg.Auth.OperatorUsername, cfg.Auth.OperatorPasswordHash, tokens)
		utils.LogInfo("Operator authentication enabled", map[string]interface{}{
			"username":  cfg.Auth.OperatorUsername,
			"token_ttl": tokens.TTL().String(),
		})
	}

	if cfg.Server.SeedDemoData {
		if err := services.SeedDemoData(ctx, customerService, passService); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port":  cfg.Server.Port,
			"store": store.Driver(),
			"auth":  cfg.Auth.Enabled,
			"api":   "http://localhost:" + cfg.Server.Port + "/api/v1",
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		utils.LogInfo("Shutting down server", map[string]interface{}{"timeout": cfg.Server.ShutdownTimeout.String()})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		utils.LogError(err, "Server stopped with error")
		return err
	}
	utils.LogInfo("Server stopped")
	return nil
}

func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		utils.LogInfo("No Kafka brokers configured, events are only logged")
		return events.LogPublisher{}, nil
	}
	return events.DialKafka(cfg.Brokers, cfg.Topic)
}

func newLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemoryLimiter(cfg.Max, cfg.Window), nil
	}
	return ratelimit.NewRedisLimiter(cfg.RedisURL, cfg.Max, cfg.Window)
}
