package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/finvoice-bridge/internal/common"
	"github.com/joseph-ayodele/finvoice-bridge/internal/export"
	"github.com/joseph-ayodele/finvoice-bridge/internal/pipeline"
	"github.com/joseph-ayodele/finvoice-bridge/internal/repository"
	"github.com/joseph-ayodele/finvoice-bridge/internal/server"
	"github.com/joseph-ayodele/finvoice-bridge/internal/template"
)

func main() {
	// .env is optional; real deployments set env directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Template set is loaded once and immutable for the process lifetime.
	registry, err := template.LoadFile(cfg.Templates.Path, logger)
	if err != nil {
		logger.Error("failed to load templates", "path", cfg.Templates.Path, "error", err)
		os.Exit(1)
	}

	opts, err := pipeline.LoadOptions(cfg.Pipeline.OptionsPath)
	if err != nil {
		logger.Error("failed to load pipeline options", "error", err)
		os.Exit(1)
	}
	if opts.MinConfidence == 0 {
		opts.MinConfidence = cfg.Pipeline.MinConfidence
	}
	if opts.Normalization.DefaultCurrency == "" {
		opts.Normalization.DefaultCurrency = cfg.Pipeline.DefaultCurrency
	}

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open archive database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	outcomes, err := repository.NewOutcomeRepository(db, logger)
	if err != nil {
		logger.Error("failed to init outcome repository", "error", err)
		os.Exit(1)
	}

	processor := pipeline.NewProcessor(logger, registry, opts)
	exporter := export.NewService(outcomes, logger)
	svc := server.NewService(logger, processor, outcomes, exporter, db)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr, "templates", registry.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
