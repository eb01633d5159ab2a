// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Binderdex HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when it backs the cache.
//  5. Run database migrations (idempotent).
//  6. Build upstream clients and caches.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/binderdex/internal/api"
	"github.com/taibuivan/binderdex/internal/binder"
	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/cache"
	"github.com/taibuivan/binderdex/internal/platform/config"
	"github.com/taibuivan/binderdex/internal/platform/constants"
	"github.com/taibuivan/binderdex/internal/platform/migration"
	pgstore "github.com/taibuivan/binderdex/internal/platform/postgres"
	redisstore "github.com/taibuivan/binderdex/internal/platform/redis"
	"github.com/taibuivan/binderdex/internal/platform/sec"
	"github.com/taibuivan/binderdex/internal/platform/upstream"
	"github.com/taibuivan/binderdex/internal/search"
	"github.com/taibuivan/binderdex/internal/tcg"
	"github.com/taibuivan/binderdex/internal/users/account"
	"github.com/taibuivan/binderdex/internal/users/auth"
)

// pruneInterval is how often expired sessions and stale images are deleted.
const pruneInterval = time.Hour

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("cache_backend", cfg.CacheBackend),
		slog.Bool("read_only", cfg.ReadOnly),
		slog.Bool("image_proxy", cfg.PokeWalletAPIKey != ""),
	)

	// Root context lives until shutdown; background workers watch it.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	checks := []api.Check{{
		Name:  "postgres",
		Probe: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		checks = append(checks, api.Check{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Upstreams & Caches ─────────────────────────────────────────────
	pokeAPI := upstream.NewClient(upstream.Options{Name: "pokeapi", BaseURL: cfg.PokeAPIBaseURL, RequestsPerSecond: 10, Burst: 5})
	tcgdex := upstream.NewClient(upstream.Options{Name: "tcgdex", BaseURL: cfg.TCGdexBaseURL, RequestsPerSecond: 10, Burst: 5})

	// No key means no client; the image proxy then answers CONFIGURATION_MISSING.
	var pokeWallet *upstream.Client
	if cfg.PokeWalletAPIKey != "" {
		header := http.Header{}
		header.Set(constants.HeaderAPIKey, cfg.PokeWalletAPIKey)
		pokeWallet = upstream.NewClient(upstream.Options{Name: "pokewallet", BaseURL: cfg.PokeWalletBaseURL, Header: header})
	}

	catalogs := catalog.NewProvider(
		catalog.NewPokeAPIClient(pokeAPI),
		newCache[[]catalog.Entry](cfg, rdb, constants.RedisPrefixCatalog, cfg.CatalogTTL),
		cfg.CatalogTTL,
	)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	authService := auth.NewService(auth.NewUserRepository(pool), auth.NewSessionRepository(pool), jwtSvc)
	accountService := account.NewService(account.NewAccountRepository(pool), account.NewSessionRepository(pool))

	resolver := search.NewResolver(catalogs)
	binderService := binder.NewService(
		binder.NewPostgresRepository(pool),
		catalogs,
		resolver,
		binder.Options{Writable: !cfg.ReadOnly},
	)

	cardService := tcg.NewService(
		tcg.NewTCGdexClient(tcgdex),
		newCache[[]tcg.Card](cfg, rdb, constants.RedisPrefixCards, cfg.CardCacheTTL),
		newCache[[]tcg.Set](cfg, rdb, constants.RedisPrefixSets, cfg.CardCacheTTL),
		cfg.CardCacheTTL,
	)
	imageProxy := tcg.NewImageProxy(pokeWallet, tcg.NewDiskImageStore(cfg.ImageCacheDir), constants.ImageCacheTTL)

	go prune(rootCtx, log, "sessions", authService.PruneSessions)
	go prune(rootCtx, log, "images", imageProxy.Prune)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		Checks:   checks,
		Writable: !cfg.ReadOnly,
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		Binders:   binder.NewHandler(binderService),
		Catalog:   search.NewHandler(resolver),
		Cards:     tcg.NewHandler(cardService, imageProxy),
	}

	server := api.NewServer(rootCtx, cfg, log, jwtSvc, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	rootCancel()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newCache selects the cache backend configured by CACHE_BACKEND. maxAge
// bounds how long the memory backend keeps any entry.
func newCache[T any](cfg *config.Config, rdb *goredis.Client, prefix string, maxAge time.Duration) cache.Cache[T] {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		return cache.NewRedis[T](rdb, prefix)
	case config.CacheBackendNone:
		return cache.NewNoop[T]()
	default:
		return cache.NewMemory[T](cfg.MemoryCacheSize, maxAge)
	}
}

// prune runs sweep every pruneInterval until ctx is cancelled.
func prune(ctx context.Context, log *slog.Logger, target string, sweep func(context.Context) (int64, error)) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweep(ctx)
			if err != nil {
				log.Warn("prune_failed", slog.String("target", target), slog.Any("error", err))
				continue
			}
			log.Debug("pruned", slog.String("target", target), slog.Int64("removed", removed))
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
