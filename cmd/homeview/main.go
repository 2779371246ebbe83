package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/config"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/filter"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/repository/sqlite"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/seed"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/server"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/session"
)

func main() {
	// Load .env file if present (ignores error if not found)
	_ = godotenv.Load()

	// Parse command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup logging
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"listen_addr", cfg.ListenAddr,
		"database_path", cfg.DatabasePath,
		"cache_enabled", cfg.Cache.Enabled,
		"seed_enabled", cfg.Seed.Enabled,
	)

	// Ensure data directory exists
	dataDir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Initialize repository
	repo, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	logger.Info("database initialized", "path", cfg.DatabasePath)

	ctx := context.Background()

	// Provision listings on first boot
	if cfg.Seed.Enabled {
		var listings []domain.Listing
		if cfg.Seed.Path != "" {
			listings, err = seed.ListingsFromFile(cfg.Seed.Path)
		} else {
			listings, err = seed.Listings()
		}
		if err != nil {
			logger.Error("failed to load seed data", "error", err)
			os.Exit(1)
		}

		inserted, err := seed.Load(ctx, repo, listings)
		if err != nil {
			logger.Error("failed to seed repository", "error", err)
			os.Exit(1)
		}
		if inserted > 0 {
			logger.Info("repository seeded", "listings", inserted)
		}
	}

	// Initialize filter engine and result cache
	engine := filter.NewEngine()
	var cache *filter.ResultCache
	if cfg.Cache.Enabled {
		cache = filter.NewResultCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		logger.Info("result cache enabled", "max_entries", cfg.Cache.MaxEntries, "ttl", cfg.Cache.TTL)
	}

	// Initialize the browsing session and HTTP shell
	sess := session.New(repo, engine, cache, logger)
	router := server.New(sess, repo, engine, logger, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("shutdown complete")
}
