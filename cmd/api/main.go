package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/api"
	"github.com/baharkarakas/booking-ledger/internal/auth"
	"github.com/baharkarakas/booking-ledger/internal/config"
	"github.com/baharkarakas/booking-ledger/internal/db"
	"github.com/baharkarakas/booking-ledger/internal/logger"
	"github.com/baharkarakas/booking-ledger/internal/metrics"
	"github.com/baharkarakas/booking-ledger/internal/notify"
	repo "github.com/baharkarakas/booking-ledger/internal/repository"
	"github.com/baharkarakas/booking-ledger/internal/repository/memory"
	"github.com/baharkarakas/booking-ledger/internal/repository/postgres"
	"github.com/baharkarakas/booking-ledger/internal/services"
	"github.com/baharkarakas/booking-ledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	if cfg.Env == "dev" {
		log.Warn("dev auth enabled: /api/v1/auth/login and dev-<role>-<uuid> tokens accept any identity")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store", "kind", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	notifier, closeNotifier, err := openNotifier(cfg, log)
	if err != nil {
		log.Error("notifier", "kind", cfg.Notifier, "err", err)
		os.Exit(1)
	}
	defer closeNotifier()

	wp := worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueue)
	dispatcher := notify.NewDispatcher(notifier, wp, cfg.NotifyTimeout, log)

	bookingSvc := services.NewBookingService(store, cfg.PlatformFeeRate, dispatcher, log)
	balanceSvc := services.NewBalanceService(store, log)
	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	metrics.Init()
	r := api.NewRouter(cfg, bookingSvc, balanceSvc, tm)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.Store, "notifier", cfg.Notifier,
			"platform_fee_rate", cfg.PlatformFeeRate.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	// flush queued notifications before the notifier closes
	wp.Stop()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, func(), error) {
	if cfg.Store == "memory" {
		log.Warn("using in-memory store, state is lost on exit")
		return memory.NewStore(), func() {}, nil
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return postgres.NewStore(pool), pool.Close, nil
}

func openNotifier(cfg config.Config, log *slog.Logger) (notify.Notifier, func(), error) {
	switch cfg.Notifier {
	case "kafka":
		n, err := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return n, closer(log, "kafka", n), nil
	case "redis":
		client, err := notify.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return notify.NewRedisNotifier(client, cfg.RedisChannel), closer(log, "redis", client), nil
	default:
		return notify.LogNotifier{Log: log}, func() {}, nil
	}
}

func closer(log *slog.Logger, name string, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn("close", "component", name, "err", err)
		}
	}
}
