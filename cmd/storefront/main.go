// Package main runs storefrontd: the catalog engine with its durable cache tier kept warm
// on a schedule and on catalog change events.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/subscriber"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run assembles the engine, loads the first listing page and keeps the durable lists warm
// until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName, configloader.WithDefaults(config.Defaults()))
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	durable, closeDurable, err := app.NewDurable(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open durable storage: %w", err)
	}
	defer closeDurable()

	broker, err := app.ConnectBroker(ctx, cfg.NATS, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sf := app.SetupStorefront(ctx, cfg, durable, broker.Publisher, app.NewStorefrontMetrics(reg), logger)

	state, err := sf.Shop.Start(ctx)
	if err != nil {
		logger.Warn("first catalog page failed to load", "error", err, "message", state.Message)
	} else {
		logger.Info("catalog listing loaded",
			slog.Int("products", len(state.Products)),
			slog.Int("total", state.TotalCount),
			slog.Bool("has_more", state.HasMore),
			slog.String("filter", filter.Values(state.Filter).Encode()))
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the durable lists warm
	g.Go(func() error {
		return warmLoop(gCtx, sf.Catalog, cfg.Warmup.Interval, logger)
	})

	// Refresh the lists when the catalog changes
	if broker.JS != nil {
		g.Go(func() error {
			logger.Info("Subscriber started", slog.String("subject", cfg.Subscriber.Subject))
			err := subscriber.Start(gCtx, broker.JS, cfg.NATS.Stream, cfg.Subscriber, sf.Catalog, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("subscriber failed: %w", err)
			}
			return nil
		})
	}

	if cfg.Metrics.Enabled {
		metricsServer := app.SetupMetricsServer(cfg.Metrics.Addr, reg)
		g.Go(func() error {
			logger.Info("Metrics server listening", slog.String("addr", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown metrics server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down metrics server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// warmLoop warms the lists once and then on every tick. A zero interval warms once.
func warmLoop(ctx context.Context, svc *catalog.Service, interval time.Duration, logger *slog.Logger) error {
	warm := func() {
		if err := svc.Warm(ctx); err != nil && ctx.Err() == nil {
			logger.WarnContext(ctx, "failed to warm catalog lists", "error", err)
			return
		}
		logger.DebugContext(ctx, "catalog lists warmed")
	}
	warm()
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			warm()
		}
	}
}
