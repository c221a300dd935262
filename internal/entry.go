package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/laguz/internal/api"
	"github.com/starford/laguz/internal/kvstore"
	"github.com/starford/laguz/internal/mcpserver"
	"github.com/starford/laguz/internal/notes"
	"github.com/starford/laguz/internal/sse"
)

// openStore creates the configured store backend.
func openStore(cfg *StoreConfig) (kvstore.Store, error) {
	switch cfg.Driver {
	case kvstore.DriverMemory:
		return kvstore.NewMemory(), nil
	case kvstore.DriverDir:
		return kvstore.NewDir(cfg.Path)
	case kvstore.DriverSQLite:
		return kvstore.OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage.
	store, err := openStore(&cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	// Build the model and load the collection.
	model := notes.NewModel(store, logger)
	if err := model.Reload(); err != nil {
		return fmt.Errorf("initial reload: %w", err)
	}
	logger.Info("Notes loaded", slog.Int("count", model.Len()))

	// MCP stdio mode replaces the HTTP surface entirely.
	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(model).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API router; mutations through the API fan out over SSE.
	apiRouter := api.NewRouter(model, cfg.Auth.AuthEnabled(), cfg.Auth.Token,
		broker.PublishNoteEvent, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch a directory-backed store for external writes so the caches
	// keep mirroring it. Other drivers have no external change channel.
	if dir, ok := store.(*kvstore.Dir); ok {
		g.Go(func() error {
			return notes.Watch(gCtx, model, dir.Root(), logger, func(kind, id string) {
				broker.PublishNoteEvent(kind, id)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
