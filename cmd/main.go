package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/sevennews/internal/api"
	"github.com/bilgisen/sevennews/internal/auth"
	"github.com/bilgisen/sevennews/internal/blob"
	"github.com/bilgisen/sevennews/internal/cache"
	"github.com/bilgisen/sevennews/internal/config"
	"github.com/bilgisen/sevennews/internal/events"
	"github.com/bilgisen/sevennews/internal/feed"
	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/metrics"
	"github.com/bilgisen/sevennews/internal/repository"
	"github.com/bilgisen/sevennews/internal/storage"
)

func main() {
	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		var cerr *config.ConfigurationError
		if errors.As(err, &cerr) {
			logger.Get().Fatal().
				Strs("missing", cerr.Missing).
				Strs("invalid", cerr.Invalid).
				Msg("Invalid configuration")
		}
		logger.Get().Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogOutput,
		Pretty: cfg.LogPretty,
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().
		Str("env", cfg.Env).
		Str("store", cfg.StoreBackend).
		Str("blob", cfg.BlobBackend).
		Str("sessions", cfg.SessionBackend).
		Msg("Starting application...")

	ctx := context.Background()

	// Document store
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open document store")
	}
	defer func() {
		log.Info().Msg("Closing document store...")
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing document store")
		}
	}()

	// Blob store
	blobs, uploadDir, err := openBlobs(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.BlobBackend).Msg("Failed to open blob store")
	}

	// Change events
	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Publishing change events")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	m := metrics.New()
	repo := repository.New(store, blobs,
		repository.WithEvents(publisher),
		repository.WithMetrics(m),
	)
	snapshot := feed.NewSnapshot(repo, cfg.FeedCacheTTL)

	// Sessions
	sessions, err := openSessions(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer func() {
		log.Info().Msg("Closing session store...")
		if err := sessions.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing session store")
		}
	}()

	deps := api.Deps{
		Config:    cfg,
		Repo:      repo,
		Snapshot:  snapshot,
		Sessions:  sessions,
		Auth:      auth.NewClient(cfg.IdentityEndpoint, cfg.IdentityAPIKey, cfg.HTTPTimeout),
		Metrics:   m,
		UploadDir: uploadDir,
	}

	app := api.NewApp(cfg)
	api.SetupRoutes(app, api.NewHandlers(deps), deps)

	// Load the feed in the background before the first request.
	snapshot.RefreshAsync()

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create a deadline for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown the server
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		return storage.NewSQLite(cfg.SQLitePath)
	case config.StorePostgres:
		return storage.NewPostgres(ctx, cfg.DatabaseURL)
	case config.StoreRedis:
		return storage.NewRedis(cfg.RedisURL, cfg.RedisPrefix)
	default:
		return storage.NewFileStore(cfg.StoragePath)
	}
}

// openBlobs returns the image store and, for local storage, the directory
// to serve under /uploads.
func openBlobs(ctx context.Context, cfg *config.Config) (blob.Store, string, error) {
	if cfg.BlobBackend == config.BlobS3 {
		s, err := blob.NewS3(ctx, blob.S3Config{
			Endpoint:  cfg.R2Endpoint,
			Region:    cfg.R2Region,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			PublicURL: cfg.R2PublicURL,
		})
		return s, "", err
	}

	l, err := blob.NewLocal(cfg.UploadPath, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	return l, l.Root(), nil
}

func openSessions(cfg *config.Config) (cache.Sessions, error) {
	if cfg.SessionBackend == config.SessionRedis {
		return cache.NewRedisSessions(cfg.RedisURL, cfg.RedisPrefix)
	}
	return cache.NewMemory(), nil
}
