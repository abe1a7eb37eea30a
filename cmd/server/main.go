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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	webAdapter "lpg-console/internal/adapters/web"
	"lpg-console/internal/app"
	"lpg-console/internal/config"
	"lpg-console/internal/core"
	"lpg-console/internal/db"
	"lpg-console/internal/events"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var bus events.Bus
	if cfg.RedisURL != "" {
		redisBus, err := events.NewRedisBus(cfg.RedisURL, logger)
		if err != nil {
			return err
		}
		defer redisBus.Close()
		bus = redisBus
		logger.Info("change notifications via redis", "url", cfg.RedisURL)
	} else {
		bus = events.NewMemoryBus()
	}

	store := buildStore(cfg, pool, bus, logger)

	users := core.NewUserService(pool)
	warehouses := core.NewWarehouseService(pool, store)
	products := core.NewProductService(pool)
	adjustments := core.NewAdjustmentService(store, logger)
	transfers := core.NewTransferService(store, logger)
	analytics := core.NewUsageAnalytics(core.NewPostgresOrderReader(pool), logger)

	notifier := core.NewChangeNotifier(store, logger)
	go func() {
		if err := notifier.Run(ctx, bus); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("change notifier stopped", "error", err)
		}
	}()

	svc := app.NewAppService(users, warehouses, products, store, adjustments, transfers, analytics)
	handler := webAdapter.NewHandler(svc, notifier, logger, cfg.JWTSecret, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "backend", cfg.InventoryBackend)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// buildStore picks the balance store backend. The memory backend exists for
// demos and local front-end work without a database.
func buildStore(cfg *config.Config, pool *pgxpool.Pool, bus events.Bus, logger *slog.Logger) core.BalanceStore {
	if cfg.InventoryBackend == "memory" {
		logger.Warn("using in-memory inventory store; balances reset on restart")
		return core.NewMemoryStore(bus, logger)
	}
	return core.NewPostgresStore(pool, bus, logger)
}
