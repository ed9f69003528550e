package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/citywalk/internal/api"
	"github.com/neexbeast/citywalk/internal/audio"
	"github.com/neexbeast/citywalk/internal/blob"
	"github.com/neexbeast/citywalk/internal/cache"
	"github.com/neexbeast/citywalk/internal/config"
	"github.com/neexbeast/citywalk/internal/gemini"
	"github.com/neexbeast/citywalk/internal/maps"
	"github.com/neexbeast/citywalk/internal/metrics"
	"github.com/neexbeast/citywalk/internal/profile"
	"github.com/neexbeast/citywalk/internal/storage"
	"github.com/neexbeast/citywalk/internal/tour"
)

func migrate(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := storage.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	applied, err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied", "files", applied)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Connect to PostgreSQL.
	pool, err := storage.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	applied, err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied", "files", applied)

	// Connect to Redis.
	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	blobs, err := blob.NewFileStore(cfg.AudioDir)
	if err != nil {
		return fmt.Errorf("opening audio store: %w", err)
	}
	defer func() { _ = blobs.Close() }()

	snapshots, err := profile.NewSnapshotStore(cfg.SnapshotDir)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Wire dependencies.
	provider, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.GeminiAPIKey,
		TextModel:   cfg.GeminiTextModel,
		SpeechModel: cfg.GeminiSpeechModel,
		Voice:       cfg.GeminiVoice,
	})
	if err != nil {
		return fmt.Errorf("creating gemini client: %w", err)
	}
	if !provider.Available() {
		log.Warn("GEMINI_API_KEY not set: tours fall back to fixtures and cache, narration disabled")
	}

	opts := []tour.Option{
		tour.WithObserver(m),
		tour.WithRetryPolicy(tour.RetryPolicy{Attempts: cfg.GenerationAttempts, Delay: cfg.GenerationDelay}),
	}
	if cfg.MapsAPIKey != "" {
		opts = append(opts, tour.WithLocator(maps.NewEnricher(cfg.MapsAPIKey, log)))
	} else {
		log.Warn("MAPS_API_KEY not set: stop coordinates will not be enriched")
	}

	repo := storage.NewRepository(pool)
	tourCache := cache.NewTourCache(redisClient, m)
	audioCache := cache.NewAudioCache(redisClient, blobs, cfg.PublicBaseURL, cfg.LocalCacheMB, m)

	resolver := tour.NewResolver(tourCache, provider, log, opts...)

	var synth audio.Synthesizer
	if provider.Available() {
		synth = provider
	}
	narrator := audio.NewNarrator(audioCache, synth, m, log)
	syncer := profile.NewSyncer(repo, snapshots, m, log)

	handlers := api.NewHandlers(resolver, narrator, audioCache, syncer, repo, log)

	// Build router with pingers adapted for health check.
	dbPinger := &pgxPoolPinger{pool: pool}
	redisPinger := &redisPingerAdapter{client: redisClient}

	router := api.NewRouter(handlers, cfg.BearerToken, dbPinger, redisPinger, m, log)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// pgxPoolPinger adapts pgxpool.Pool to the api.dbPinger interface.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to the api.redisPinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
