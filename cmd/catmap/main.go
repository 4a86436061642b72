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

	"github.com/couchcryptid/cat-map/internal/activity"
	httpadapter "github.com/couchcryptid/cat-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cat-map/internal/adapter/kafka"
	"github.com/couchcryptid/cat-map/internal/adapter/mapbox"
	"github.com/couchcryptid/cat-map/internal/config"
	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
	"github.com/couchcryptid/cat-map/internal/session"
	"github.com/couchcryptid/cat-map/internal/store"
	"github.com/couchcryptid/cat-map/internal/viewport"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// readiness passes only when every check passes.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	raw := domain.SeedRecords()
	if cfg.SeedFile != "" {
		raw, err = store.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logger.Error("failed to load seed file", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}
	records := store.New(raw)
	records.Normalize()
	logger.Info("records normalized", "count", records.Len())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Place enrichment (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		resolver := mapbox.NewCachedResolver(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox place enrichment enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
		records.EnrichPlaces(ctx, resolver, logger)
	} else {
		logger.Info("mapbox place enrichment disabled")
	}

	checks := readiness{records}

	var (
		onSettle viewport.Listener
		feed     *activity.Feed
		writer   *kafkaadapter.Writer
	)
	if cfg.ActivityEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		feed = activity.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		onSettle = feed.Enqueue
		checks = append(checks, feed)
		logger.Info("viewport activity feed enabled", "topic", cfg.KafkaViewportTopic)
	}

	sessions := session.NewManager(records.Records(), cfg.SessionTTL, onSettle, metrics, logger)

	page := httpadapter.PageConfig{
		CenterLat: cfg.MapCenterLat,
		CenterLon: cfg.MapCenterLon,
		Zoom:      cfg.MapZoom,
		TileURL:   cfg.TileURL,
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, sessions, records, page, checks, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start activity feed.
	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		if feed == nil {
			return
		}
		if err := feed.Run(ctx); err != nil {
			logger.Error("activity feed error", "error", err)
		}
	}()

	// Expire idle viewers.
	go sweepSessions(ctx, sessions, cfg.SessionTTL, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-feedDone:
	case <-shutdownCtx.Done():
		logger.Warn("activity feed did not drain before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func sweepSessions(ctx context.Context, sessions *session.Manager, ttl time.Duration, logger *slog.Logger) {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("expired idle viewers", "count", n)
			}
		}
	}
}
