// Package app wires configuration, storage and services together for the API
// server and the tourctl CLI. No business logic belongs here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/tourdesk/tourdesk/internal/cache"
	"github.com/tourdesk/tourdesk/internal/config"
	"github.com/tourdesk/tourdesk/internal/importer"
	"github.com/tourdesk/tourdesk/internal/repo"
	"github.com/tourdesk/tourdesk/internal/service"
	"github.com/tourdesk/tourdesk/migrations"
)

// App holds the shared connections and the services built on them.
type App struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client // nil when REDIS_URL is unset or unreachable
	Lists cache.ListCache

	Masters *service.MasterService
	Tours   *service.TourService
	Imports *service.ImportService
	Export  *service.ExportService
}

// Open connects to Postgres, applies pending migrations, connects to Redis
// when configured and builds every service. A Redis failure is logged and the
// shared list cache disabled; the database is required.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.Open: create database pool: %w", err)
	}
	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.Open: connect to database: %w", err)
	}
	slog.InfoContext(ctx, "database connection established")

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.Open: %w", err)
	}

	a := &App{Pool: pool, Lists: cache.NopListCache{}}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.WarnContext(ctx, "redis unavailable, shared entity cache disabled", "error", err)
		} else {
			a.Redis = client
			a.Lists = cache.NewRedisListCache(client, "tourdesk:master", cfg.EntityCacheTTL)
			slog.InfoContext(ctx, "redis connection established")
		}
	}

	masterRepo := repo.NewMasterRepo(pool)
	tourRepo := repo.NewTourRepo(pool)

	// Master writes drop the shared lists first, then every import session
	// memo, so the next preview refetches through the fresh lists.
	loader := importer.NewLoader(masterRepo, a.Lists, cfg.EntityCacheTTL)
	a.Masters = service.NewMasterService(masterRepo, a.Lists, loader)
	a.Tours = service.NewTourService(tourRepo)
	a.Imports = service.NewImportService(
		loader,
		a.Tours,
		a.Masters,
		importer.Defaults{
			Company:     cfg.ImportDefaultCompany,
			Guide:       cfg.ImportDefaultGuide,
			Nationality: cfg.ImportDefaultNationality,
		},
	)
	a.Export = service.NewExportService(tourRepo, masterRepo)
	return a, nil
}

// Migrate applies pending goose migrations through a database/sql handle
// borrowed from pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// goose needs database/sql, not a pgx pool.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("app.Migrate: %w", err)
	}
	return nil
}

// Close releases the Redis client and the database pool.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}
	a.Pool.Close()
}
