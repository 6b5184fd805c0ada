package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"bazaar-ads/internal/adapter/http"
	kafkasink "bazaar-ads/internal/adapter/kafka"
	"bazaar-ads/internal/adapter/memory"
	"bazaar-ads/internal/adapter/postgres"
	redisfeed "bazaar-ads/internal/adapter/redis"
	"bazaar-ads/internal/adapter/usecase"
	"bazaar-ads/internal/config"
	"bazaar-ads/internal/core/port"
	"bazaar-ads/internal/db"
	"bazaar-ads/internal/telemetry"
)

// main is the entry point of the bazaar-ads service. It loads configuration,
// selects the store and the change feed, then runs the HTTP server and the
// background workers until a termination signal arrives.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	logger := cfg.Log.New(os.Stdout, cfg.Tracing.ServiceName)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		value := <-quit
		logger.Info("shutdown requested", slog.String("signal", value.String()))
		exitCode = 128 + int(value.(syscall.Signal))
		cancel()
	}()

	if err = run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped", slog.Any("error", err))
		exitCode = 1
		return
	}
	if ctx.Err() == nil {
		exitCode = 0
	}
}

// run wires the adapters and blocks until ctx is cancelled or a component
// fails.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Tracing.Enabled() {
		tp, err := telemetry.InitTracerProvider(cfg.Tracing, logger)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Error("tracer shutdown error", slog.Any("error", err))
			}
		}()
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Store.Seed {
		if cfg.Prod() {
			logger.Warn("seeding skipped in prod")
		} else if seeded, err := db.Seed(ctx, store); err != nil {
			return fmt.Errorf("seed: %w", err)
		} else if seeded {
			logger.Info("demo data seeded")
		} else {
			logger.Info("demo data already present, seeding skipped")
		}
	}

	var (
		publisher  port.ChangePublisher
		subscriber port.ChangeSubscriber
	)
	if cfg.Redis.Enabled() {
		client, err := redisfeed.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		feed := redisfeed.NewChangeFeed(client, cfg.Redis.Channel, logger)
		publisher, subscriber = feed, feed
		logger.Info("change feed on redis", slog.String("channel", cfg.Redis.Channel))
	} else {
		broadcaster := memory.NewBroadcaster()
		publisher, subscriber = broadcaster, broadcaster
	}

	pricing := usecase.NewPricingUseCase(store, logger)
	campaigns := usecase.NewCampaignUseCase(store, pricing, publisher, logger)

	handler := httpadapter.NewHandler(httpadapter.Services{
		Ledger:    usecase.NewLedgerUseCase(store, publisher, logger),
		Campaigns: campaigns,
		Listings:  usecase.NewListingUseCase(store),
		Pricing:   pricing,
		Feed:      subscriber,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
			return nil
		}
		logger.Info("server gracefully stopped")
		return nil
	})

	g.Go(func() error {
		return usecase.NewExpiryWorker(campaigns, cfg.Workers.ExpiryInterval, logger).Run(gctx)
	})

	if cfg.Kafka.Enabled() {
		sink := kafkasink.NewNotificationSink(kafkasink.NewWriter(cfg.Kafka))
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("kafka writer close error", slog.Any("error", err))
			}
		}()
		relay := usecase.NewNotificationRelay(store, sink, cfg.Workers.RelayInterval, cfg.Workers.RelayBatch, logger)
		g.Go(func() error {
			return relay.Run(gctx)
		})
	} else {
		logger.Info("kafka not configured, notifications stay in the inbox")
	}

	return g.Wait()
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.Store, func(), error) {
	if cfg.Store.Memory() {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	if cfg.Psql.RunMigrations {
		if err := db.Migrate(cfg.Psql.Addr.String(), logger); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := db.NewPostgresPool(ctx, cfg.Psql, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection: %w", err)
	}
	return postgres.NewStore(pool), pool.Close, nil
}
