package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/noor-ul-masajid/console/internal/config"
	"github.com/noor-ul-masajid/console/internal/core"
	"github.com/noor-ul-masajid/console/internal/core/schemas"
	"github.com/noor-ul-masajid/console/internal/history"
	"github.com/noor-ul-masajid/console/internal/logging"
	"github.com/noor-ul-masajid/console/internal/roster"
	"github.com/noor-ul-masajid/console/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	store, closeStore, err := openHistory(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open import history", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	r := roster.New()
	schemas.Register(r)
	slog.Info("import schemas registered", "count", core.SchemaCount())

	service := core.NewService(core.ServiceConfig{
		MaxFileSize:   cfg.Import.MaxFileSize,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWait:       cfg.Import.MaxWait,
		SessionTTL:    cfg.Import.SessionTTL,
		PreviewRows:   cfg.Import.PreviewRows,
	}, store)

	server := web.NewServer(cfg, service, r)

	jobCtx, cancelJobs := context.WithCancel(ctx)
	go service.StartSessionReaper(jobCtx, cfg.Import.ReapInterval)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for file parses to finish", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("file parses did not finish in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openHistory connects the Postgres history store when a database URL is
// configured and falls back to memory otherwise.
func openHistory(ctx context.Context, db config.DatabaseConfig) (history.Store, func(), error) {
	if !db.Enabled() {
		slog.Info("no database configured, keeping import history in memory")
		return history.NewMemoryStore(history.DefaultMemoryEntries), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(db.MaxConns)
	poolConfig.MinConns = int32(db.MinConns)
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	store := history.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	slog.Info("connected to database", "database", poolConfig.ConnConfig.Database)
	return store, pool.Close, nil
}
