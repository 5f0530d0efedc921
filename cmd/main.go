package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/api"
	"github.com/gobapps/gob-api/internal/api/middleware"
	"github.com/gobapps/gob-api/internal/config"
	"github.com/gobapps/gob-api/internal/fmp"
	"github.com/gobapps/gob-api/internal/gemini"
	"github.com/gobapps/gob-api/internal/llm"
	"github.com/gobapps/gob-api/internal/loaders"
	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/notify"
	"github.com/gobapps/gob-api/internal/scheduler"
	"github.com/gobapps/gob-api/internal/sms"
	"github.com/gobapps/gob-api/internal/utils"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.InitLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		utils.Zlog.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := loaders.NewPostgresClient(cfg.DatabaseURL, cfg.WorkerCount*2, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	deps := api.Dependencies{
		DB:       db,
		FMP:      fmp.NewClient(cfg.FMPAPIKey, cfg.FMPBaseURL, cfg.FMPRatePerSec),
		Research: llm.NewClient("perplexity", cfg.PerplexityURL, cfg.PerplexityKey, cfg.PerplexityModel),
		Writer:   llm.NewClient("openai", cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIModel),
		EmailLog: notify.NewLogBuffer(cfg.EmailLogCapacity),
	}
	deps.Mailer = notify.NewLoggingMailer(notify.NewResendSender(cfg.ResendAPIKey, cfg.ResendFrom), deps.EmailLog)

	var analyst sms.Analyst
	if g, err := gemini.NewClient(cfg.GeminiAPIKeys); err == nil {
		analyst = g
	} else {
		utils.Zlog.Warn("Gemini not configured, SMS analysis disabled", zap.Error(err))
	}
	deps.Analyst = analyst

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), metrics.Middleware())

	registered := api.RegisterRoutes(engine, deps, cfg)

	var runner *scheduler.Runner
	if cfg.SchedulerEnabled {
		runner = scheduler.NewRunner(ctx, registered.Schedules, registered.Pipeline, registered.Sync, cfg.SyncCron)
		if err := runner.Start(); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins)(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.Zlog.Info("Server listening",
			zap.String("service", cfg.ServiceName),
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		utils.Zlog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if runner != nil {
		runner.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Zlog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	registered.Workers.Stop(shutdownCtx)
	utils.Zlog.Info("Server stopped")
	return nil
}
