package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iconidentify/tubegrab/internal/api"
	"github.com/iconidentify/tubegrab/internal/bot"
	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/engine"
	"github.com/iconidentify/tubegrab/internal/repository"
	"github.com/iconidentify/tubegrab/internal/worker"
	"github.com/iconidentify/tubegrab/internal/ytdlp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tubegrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tubegrab",
		"version", Version,
		"build_time", BuildTime,
	)

	// Local development convenience: pick up .env when present
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logger.Warn("failed to load .env", "error", err)
		}
	}

	// Load configuration. Missing bot token or database path is fatal here,
	// before any polling starts.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure the temp directory exists
	if err := os.MkdirAll(cfg.Download.TempPath, 0755); err != nil {
		logger.Error("failed to create temp directory", "error", err)
		os.Exit(1)
	}

	// Initialize the download log
	repo, err := repository.NewSQLiteDownloadRepository(cfg.Database.Path, logger)
	if err != nil {
		logger.Error("failed to open download log", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize the retrieval pipeline
	resolver := ytdlp.NewResolver(cfg.Download, logger)
	transfer := ytdlp.NewTransferrer(cfg.Download, logger)
	eng := engine.New(resolver, transfer, cfg.Policy, cfg.Download, logger)

	// Worker pool runs the blocking retrievals off the bot's dispatch path
	pool := worker.NewPool(worker.Config{
		Workers:   cfg.Worker.Count,
		QueueSize: cfg.Worker.QueueSize,
	}, logger)
	pool.Start()

	// Telegram bot
	handlers := bot.NewHandlers(eng, repo, pool, cfg.Policy, logger)
	app, err := bot.NewApp(cfg.Bot, handlers, logger)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Ops endpoints for the container orchestrator
	ops := api.NewServer(cfg.Ops.Addr, repo, logger)
	go func() {
		if err := ops.Start(); err != nil {
			logger.Error("ops server error", "error", err)
		}
	}()

	// Start polling in a goroutine; Start blocks until Stop
	go app.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	app.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ops.Shutdown(ctx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}

	// Let in-flight downloads finish
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
