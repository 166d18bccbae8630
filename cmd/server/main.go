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

	"github.com/oneday-english/oneday/internal/catalog"
	"github.com/oneday-english/oneday/internal/curriculum"
	"github.com/oneday-english/oneday/internal/ledger"
	"github.com/oneday-english/oneday/internal/platform/cache"
	"github.com/oneday-english/oneday/internal/platform/config"
	"github.com/oneday-english/oneday/internal/platform/database"
	"github.com/oneday-english/oneday/internal/roster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisCache, err := cache.New(ctx, cfg.Cache.URL)
	if err != nil {
		slog.Error("failed to connect to cache", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	app, err := buildApp(db, redisCache, cfg)
	if err != nil {
		slog.Error("failed to build services", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(app),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// app holds the wired service graph.
type app struct {
	db         *database.DB
	cache      *cache.Cache
	roster     *roster.Service
	curriculum *curriculum.Service
	recorder   ledger.Recorder
}

// buildApp wires stores and services onto the shared database pool.
func buildApp(db *database.DB, redisCache *cache.Cache, cfg *config.Config) (*app, error) {
	curriculumStore, err := curriculum.NewPostgresStore(db.Pool)
	if err != nil {
		return nil, err
	}
	rosterStore, err := roster.NewPostgresStore(db.Pool)
	if err != nil {
		return nil, err
	}
	recorder, err := ledger.NewPostgres(db.Pool)
	if err != nil {
		return nil, err
	}
	pgCatalog, err := catalog.NewPostgres(db.Pool)
	if err != nil {
		return nil, err
	}

	rosterSvc := roster.NewService(rosterStore)

	events := curriculum.NewPublisher()
	events.Subscribe(func(e curriculum.Event) {
		slog.Info("curriculum changed", "type", e.Type, "class_id", e.ClassID, "day", e.Day)
	})

	curriculumSvc := curriculum.NewService(curriculum.ServiceConfig{
		Store:       curriculumStore,
		Catalog:     catalog.NewCached(pgCatalog, redisCache, cfg.Cache.TTL),
		Completions: recorder,
		Roster:      rosterSvc,
		Events:      events,
	})

	return &app{
		db:         db,
		cache:      redisCache,
		roster:     rosterSvc,
		curriculum: curriculumSvc,
		recorder:   recorder,
	}, nil
}

// newMux creates the HTTP router with health check endpoints.
func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (a *app) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	if a.db != nil {
		if err := a.db.HealthCheck(ctx); err != nil {
			slog.Warn("readiness: database unreachable", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable","reason":"database"}`))
			return
		}
	}
	if a.cache != nil {
		if err := a.cache.HealthCheck(ctx); err != nil {
			slog.Warn("readiness: cache unreachable", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable","reason":"cache"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
