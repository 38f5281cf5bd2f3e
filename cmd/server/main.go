// Package main is the entry point for the turngate server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/turngate/turngate/internal/config"
	"github.com/turngate/turngate/internal/dispatch"
	"github.com/turngate/turngate/internal/domain"
	"github.com/turngate/turngate/internal/handler"
	"github.com/turngate/turngate/internal/runner"
	"github.com/turngate/turngate/internal/security"
	"github.com/turngate/turngate/internal/ui"
)

func main() {
	// =========================================================================
	// 1. Setup structured logger (JSON format, token redaction)
	// =========================================================================
	logger := setupLogger()

	logger.Info("starting turngate")

	// =========================================================================
	// 2. Load configuration (Singleton)
	// =========================================================================
	cfg, err := config.GetConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.Bool("endpoints_enabled", cfg.Endpoints.Enabled),
	)

	// =========================================================================
	// 3. Resolve the endpoint snapshot
	// =========================================================================
	snapshot := config.Resolve(&cfg.Endpoints)
	if snapshot == nil {
		logger.Info("dispatch feature disabled, no endpoint routes registered")
	} else {
		logger.Info("endpoints resolved",
			slog.String("base_path", snapshot.BasePath),
			slog.Int("endpoints", snapshot.EndpointCount()),
			slog.Bool("rate_limited", snapshot.RateLimit != nil),
		)
	}

	// =========================================================================
	// 4. Wire the runner, dispatch engine, and endpoint handler
	// =========================================================================
	runnerOpts := []runner.HTTPRunnerOption{}
	if cfg.Runner.TimeoutSeconds > 0 {
		runnerOpts = append(runnerOpts, runner.WithTimeout(time.Duration(cfg.Runner.TimeoutSeconds)*time.Second))
	}
	turnRunner := runner.NewHTTPRunner(cfg.Runner.BaseURL, runnerOpts...)

	engine := dispatch.NewEngine(
		turnRunner,
		dispatch.NewCallbackDeliverer(),
		dispatch.WithLogger(logger),
	)

	endpointHandler := handler.NewEndpointHandler(
		snapshot,
		domain.NewRateLimiter(),
		engine,
		handler.WithLogger(logger),
	)

	// =========================================================================
	// 5. Setup Gin router with middleware
	// =========================================================================
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(handler.RecoveryMiddleware(logger))
	router.Use(handler.CORSMiddleware())
	router.Use(handler.LoggingMiddleware(logger))

	endpointHandler.Register(router)
	router.GET("/health", endpointHandler.HandleHealth)

	// =========================================================================
	// 6. Start HTTP server with graceful shutdown
	// =========================================================================
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("address", addr),
		)

		ui.PrintBanner()
		basePath := config.DefaultBasePath
		endpointCount := 0
		if snapshot != nil {
			basePath = snapshot.BasePath
			endpointCount = snapshot.EndpointCount()
		}
		ui.PrintStartupInfo(cfg.Server.Host, cfg.Server.Port, basePath, endpointCount)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// =========================================================================
	// 7. Graceful shutdown on SIGTERM/SIGINT
	// =========================================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	ui.PrintShutdown()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
	ui.PrintGoodbye()
}

// setupLogger creates a structured JSON logger wrapped in the token redactor.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo

	if envLevel := os.Getenv("TURNGATE_LOGGING_LEVEL"); envLevel != "" {
		switch envLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(security.NewRedactedHandler(jsonHandler))

	slog.SetDefault(logger)

	return logger
}
