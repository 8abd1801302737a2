// Command server runs the question-paper analysis HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/qpaper/qmapper/internal/ai"
	"github.com/qpaper/qmapper/internal/analyze"
	"github.com/qpaper/qmapper/internal/match"
	"github.com/qpaper/qmapper/internal/platform/cache"
	"github.com/qpaper/qmapper/internal/platform/config"
	"github.com/qpaper/qmapper/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv, cleanup, err := buildServer(ctx, cfg)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // analysis runs are slow with a live provider
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
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
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildServer wires the optional dependencies: without a database URL runs
// stay in memory, without a cache URL AI results are not cached, and without
// any AI provider the matcher is heuristic-only.
func buildServer(ctx context.Context, cfg *config.Config) (*server, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var db *database.DB
	var store analyze.RunStore
	if cfg.Database.URL != "" {
		var err error
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connecting to database: %w", err)
		}
		cleanups = append(cleanups, db.Close)

		store, err = analyze.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("initializing run store: %w", err)
		}
		slog.Info("using postgres run store")
	} else {
		store = analyze.NewMemoryStore()
		slog.Info("no database configured, runs are kept in memory")
	}

	var c *cache.Cache
	if cfg.Cache.URL != "" {
		var err error
		c, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("connecting to cache: %w", err)
		}
		cleanups = append(cleanups, func() { c.Close() })
	}

	var provider ai.Provider
	if cfg.HasAIProvider() {
		router := ai.NewRouter()
		if cfg.AI.Google.APIKey != "" {
			router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey))
		}
		if cfg.AI.Ollama.Enabled {
			router.Register("ollama", ai.NewOllamaProvider(cfg.AI.Ollama.URL))
		}
		provider = router
	} else {
		slog.Info("no AI provider configured, matching is heuristic-only")
	}

	var opts []match.Option
	if c != nil {
		opts = append(opts, match.WithCache(c))
	}
	if cfg.AI.Model != "" {
		opts = append(opts, match.WithModel(cfg.AI.Model))
	}
	matcher := match.NewMatcher(provider, opts...)

	return &server{
		cfg:    cfg,
		db:     db,
		cache:  c,
		store:  store,
		runner: analyze.NewRunner(matcher),
	}, cleanup, nil
}
