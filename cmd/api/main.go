package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omnidesk/omnidesk-core/internal/api/router"
	"github.com/omnidesk/omnidesk-core/internal/app/bootstrap"
	"github.com/omnidesk/omnidesk-core/internal/channels"
	appconfig "github.com/omnidesk/omnidesk-core/internal/config"
	"github.com/omnidesk/omnidesk-core/internal/conversation"
	"github.com/omnidesk/omnidesk-core/internal/customers"
	"github.com/omnidesk/omnidesk-core/internal/observability/metrics"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

func main() {
	// No .env file is fine; environment variables take over.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting omnidesk-core API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := bootstrap.BuildPgxPool(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	transcripts := bootstrap.BuildTranscriptStore(redisClient, cfg, logger)

	identityMetrics := metrics.NewIdentityMetrics(nil)
	conversationMetrics := metrics.NewConversationMetrics(nil)

	var repo customers.Repository
	var store conversation.Store
	if pool != nil {
		repo = customers.NewPostgresRepository(pool)
		store = conversation.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory stores")
		repo = customers.NewInMemoryRepository()
		store = conversation.NewInMemoryStore()
	}

	resolver := customers.NewResolver(repo, identityMetrics, logger)
	controller := conversation.NewModeController(store, transcripts, conversationMetrics, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(controller, logger),
		ChannelHandler:      channels.NewHandler(resolver, controller, logger),
		MetricsHandler:      promhttp.Handler(),
		OperatorJWTSecret:   cfg.OperatorJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		InboundRateLimit:    10,
		InboundBurst:        30,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
