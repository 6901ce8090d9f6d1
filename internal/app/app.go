// Package app assembles the scan pipeline from configuration. Every binary
// goes through Build so they all share one wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"phishguard/internal/cache"
	"phishguard/internal/collector"
	"phishguard/internal/config"
	"phishguard/internal/history"
	"phishguard/internal/lookup"
	"phishguard/internal/proxy"
	"phishguard/internal/queue"
	"phishguard/internal/report"
	"phishguard/internal/scan"
	"phishguard/internal/store"
)

const cacheCleanupInterval = 5 * time.Minute

// App holds the long-lived components. Redis and DB are nil unless the
// configuration needed them.
type App struct {
	Config   *config.Config
	Provider lookup.Provider
	History  *history.Store
	Scanner  *scan.Service
	Redis    *redis.Client
	DB       *pgxpool.Pool
}

// Build connects whatever the configured backend needs and wires the scan
// service. Background work (cache eviction) stops when ctx is cancelled.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg}

	pm, err := proxy.New(cfg.Proxy.List, cfg.Proxy.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("proxy manager: %w", err)
	}
	if pm.Enabled() {
		log.Info("proxy rotation enabled", "proxies", len(cfg.Proxy.List), "max_concurrent", pm.Limit())
	}

	lookupCache := cache.New()
	lookupCache.StartCleanup(ctx, cacheCleanupInterval)

	a.Provider, err = lookup.New(lookup.Options{
		Mode:            cfg.Lookup.Mode,
		RDAPURL:         cfg.Lookup.RDAPURL,
		BlocklistURL:    cfg.Lookup.PhishTankURL,
		BlocklistAPIKey: cfg.Lookup.PhishTankAPIKey,
		Timeout:         cfg.Lookup.Timeout,
		CacheTTL:        cfg.Lookup.CacheTTL,
		Proxy:           pm,
		Cache:           lookupCache,
	})
	if err != nil {
		return nil, err
	}

	backend, err := a.backend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.History = history.New(backend)

	var httpClient *http.Client
	if pm.Enabled() {
		httpClient = pm.HTTPClient(cfg.Lookup.Timeout)
	}

	a.Scanner = &scan.Service{
		Provider:  a.Provider,
		Factory:   report.NewFactory(),
		History:   a.History,
		Collector: collector.New(httpClient),
		Timeout:   cfg.Lookup.Timeout,
	}

	log.Info("scan pipeline ready",
		"lookup", a.Provider.Name(),
		"backend", cfg.Storage.Backend,
	)
	return a, nil
}

func (a *App) backend(ctx context.Context) (history.Backend, error) {
	cfg := a.Config.Storage
	switch cfg.Backend {
	case config.BackendMemory:
		return history.NewMemoryBackend(), nil
	case config.BackendFile:
		return history.NewFileBackend(cfg.HistoryFile), nil
	case config.BackendRedis:
		client, err := a.RedisClient(ctx)
		if err != nil {
			return nil, err
		}
		return history.NewRedisBackend(client, cfg.RedisKey), nil
	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := store.Connect(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = pool
		if err := store.Migrate(connectCtx, pool); err != nil {
			return nil, err
		}
		return history.NewPostgresBackend(pool, ""), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// RedisClient connects to Redis on first use and pings it.
func (a *App) RedisClient(ctx context.Context) (*redis.Client, error) {
	if a.Redis != nil {
		return a.Redis, nil
	}
	client := queue.NewClient(a.Config.Storage.RedisAddr)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	a.Redis = client
	return client, nil
}

// Close releases network connections.
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
