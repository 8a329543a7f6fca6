package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-course/internal/assessment"
	"github.com/p-n-ai/pai-course/internal/catalog"
	"github.com/p-n-ai/pai-course/internal/grading"
	"github.com/p-n-ai/pai-course/internal/httpapi"
	"github.com/p-n-ai/pai-course/internal/platform/cache"
	"github.com/p-n-ai/pai-course/internal/platform/config"
	"github.com/p-n-ai/pai-course/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	checks := map[string]httpapi.CheckFunc{}

	var db *database.DB
	if cfg.HasDatabase() {
		var err error
		db, err = database.New(ctx, database.Config{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return fmt.Errorf("connecting database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		checks["database"] = db.HealthCheck
	}

	cat, err := loadCatalog(ctx, cfg.Content, db)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	var store assessment.Store = assessment.NewMemoryStore(cfg.Session.TTL())
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cache.Config{URL: cfg.Cache.URL})
		if err != nil {
			return fmt.Errorf("connecting cache: %w", err)
		}
		defer c.Close()
		store = assessment.NewRedisStore(c.Client, cfg.Session.TTL())
		checks["cache"] = c.HealthCheck
	}

	var events assessment.EventLogger = assessment.NopEventLogger{}
	if cfg.Events.Enabled && db != nil {
		events = assessment.NewPostgresEventLogger(db.Pool)
	}

	svc := assessment.NewService(assessment.ServiceConfig{
		Catalog:   cat,
		Evaluator: grading.New(grading.Config{PassThreshold: cfg.Grading.PassThreshold}),
		Store:     store,
		Events:    events,
	})

	// Read and write timeouts stay unset so live sessions can remain open.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           httpapi.NewHandler(httpapi.Config{Catalog: cat, Service: svc, Checks: checks}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"content_source", cfg.Content.Source,
			"session_store", storeName(cfg),
			"events", cfg.Events.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// loadCatalog reads lessons from the configured source. db may be nil unless
// the source is postgres.
func loadCatalog(ctx context.Context, cfg config.ContentConfig, db *database.DB) (*catalog.Catalog, error) {
	switch cfg.Source {
	case config.SourceEmbedded, "":
		return catalog.LoadEmbedded()
	case config.SourceDir:
		return catalog.LoadDir(cfg.Path)
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("content source %q needs a database", cfg.Source)
		}
		return catalog.LoadPostgres(ctx, db.Pool)
	default:
		return nil, fmt.Errorf("unknown content source %q", cfg.Source)
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func storeName(cfg *config.Config) string {
	if cfg.Cache.URL != "" {
		return "redis"
	}
	return "memory"
}
