// Package main is the entry point for the superchefs ledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yemzchef-ui/superchefs/internal/config"
	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/cache"
	v1 "github.com/yemzchef-ui/superchefs/internal/infrastructure/http/v1"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     cfg.App.Name,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Infow("starting superchefs server", "env", cfg.App.Env, "version", version)

	// --- Database ---
	poolCfg := postgres.ConfigFor(postgres.RoleReports, cfg.Database.DSN, cfg.App.Name)
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		poolCfg.MinConns = cfg.Database.MinConns
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	repo := ledger_repo.NewLedgerRepo(txManager)

	// --- Report cache ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()
	}
	reportCache := cache.NewReportCache(redisClient, cfg.Redis.CacheTTL)

	var serviceCache reports.Cache
	if reportCache.Enabled() {
		if err := reportCache.Ping(ctx); err != nil {
			log.Warnw("redis unreachable, reports will be computed directly until it recovers", "error", err)
		}
		if err := reportCache.ListenForInvalidation(ctx); err != nil {
			log.Warnw("failed to subscribe to cache bumps", "error", err)
		}

		invalidator := cache.NewInvalidator(pool.Pool, reportCache)
		invalidator.OnInvalidate(func(channel, table string) {
			log.Debugw("report cache invalidated", "channel", channel, "table", table)
		})
		invalidator.Start(ctx)
		defer invalidator.Stop()

		serviceCache = reportCache
		log.Infow("report cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	} else {
		log.Info("report cache disabled")
	}

	// --- Services ---
	reportService, err := reports.NewService(repo, serviceCache, reports.Config{
		Location:       cfg.Ledger.Location,
		Basis:          cfg.Ledger.Basis,
		RatioThreshold: cfg.Ledger.RatioThreshold,
		RatioRule:      cfg.Ledger.RatioRule,
	})
	if err != nil {
		log.Fatalw("failed to create report service", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:  log,
		Reports: reportService,
		Cache:   reportCache,
		DB:      txManager,
		AppName: cfg.App.Name,
		Version: version,
		Debug:   cfg.IsDevelopment(),
	})

	go logPoolStats(ctx, pool)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func logPoolStats(ctx context.Context, pool *postgres.Pool) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			postgres.LogPoolStats(ctx, pool.Pool)
		}
	}
}
