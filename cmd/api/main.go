package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/baharkarakas/point-ledger/internal/api"
	"github.com/baharkarakas/point-ledger/internal/cache"
	"github.com/baharkarakas/point-ledger/internal/config"
	"github.com/baharkarakas/point-ledger/internal/db"
	"github.com/baharkarakas/point-ledger/internal/logger"
	"github.com/baharkarakas/point-ledger/internal/metrics"
	repo "github.com/baharkarakas/point-ledger/internal/repository"
	"github.com/baharkarakas/point-ledger/internal/repository/memory"
	"github.com/baharkarakas/point-ledger/internal/repository/postgres"
	"github.com/baharkarakas/point-ledger/internal/services"
	"github.com/baharkarakas/point-ledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, zl *zap.Logger) error {
	repos, closeStore, err := openStore(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeStore()

	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()

	opts := []services.Option{
		services.WithLogger(zl.Named("points")),
		services.WithAudit(repos.AuditLogs, wp),
	}
	if cfg.StrictUsers {
		opts = append(opts, services.WithStrictUsers())
	}
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		if err := pingRedis(ctx, rdb); err != nil {
			// the service falls back to the store on every cache error
			zl.Warn("redis unreachable, starting with a cold cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		opts = append(opts, services.WithCache(cache.NewBalances(rdb, cfg.CacheTTL)))
	}
	svc := services.NewPointService(repos.Ledger, opts...)

	metrics.Init()
	metrics.RegisterLockCount(svc.Locks().Len)

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterDeps{
			Points:  svc,
			Log:     zl.Named("http"),
			RateRPS: cfg.RateRPS,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store),
			zap.Bool("cache", cfg.RedisAddr != ""),
			zap.Bool("strict_users", cfg.StrictUsers))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, zl *zap.Logger) (repo.Repositories, func(), error) {
	if cfg.Store == config.StoreMemory {
		return memory.NewRepositories(time.Now), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, zl.Named("pgx"))
	if err != nil {
		return repo.Repositories{}, nil, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repo.Repositories{}, nil, err
		}
		zl.Info("migrations applied")
	}
	return postgres.NewRepositories(pool, zl.Named("ledger")), pool.Close, nil
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
