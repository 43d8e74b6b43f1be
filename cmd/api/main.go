package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rocketshoes-cart/api/routes"
	"github.com/angelmondragon/rocketshoes-cart/internal/cart"
	"github.com/angelmondragon/rocketshoes-cart/internal/catalog"
	"github.com/angelmondragon/rocketshoes-cart/internal/events"
	"github.com/angelmondragon/rocketshoes-cart/internal/notify"
	"github.com/angelmondragon/rocketshoes-cart/internal/persistence"
	"github.com/angelmondragon/rocketshoes-cart/pkg/config"
	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
	"github.com/angelmondragon/rocketshoes-cart/pkg/metrics"
	"github.com/angelmondragon/rocketshoes-cart/pkg/pubsub"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	// The storefront and the persisted blob carry prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"storage_driver": cfg.Storage.Driver,
	})

	backend, err := persistence.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open cart storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logg.Error(context.Background(), "error closing cart storage", err)
		}
	}()

	catalogClient, err := catalog.NewClient(cfg.Catalog.BaseURL, catalog.WithTimeout(cfg.Catalog.Timeout))
	if err != nil {
		logg.Error(ctx, "failed to create catalog client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := cart.NewStore(ctx, cart.Params{
		Catalog:    catalogClient,
		Blobs:      backend.Store,
		Notifier:   notify.NewDispatcher(logg),
		Logger:     logg,
		Metrics:    metrics.NewCartMetrics(registry),
		StorageKey: cfg.Storage.Key,
	})
	if err != nil {
		logg.Error(ctx, "failed to load cart", err)
		os.Exit(1)
	}

	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to create pubsub client", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()

		cartEvents, err := events.NewPublisher(events.Params{
			Source:         store,
			Publisher:      psClient.CartPublisher(),
			Logger:         logg,
			StorageKey:     cfg.Storage.Key,
			PublishTimeout: cfg.PubSub.PublishTimeout,
		})
		if err != nil {
			logg.Error(ctx, "failed to create cart events publisher", err)
			os.Exit(1)
		}
		go func() {
			if err := cartEvents.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "cart events publisher stopped", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithField(ctx, "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, store, backend.Pinger, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
