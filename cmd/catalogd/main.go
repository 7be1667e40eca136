// Package main runs catalogd, the reference catalog API the storefront engine reads from.
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

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/catalogapi"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalogd"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, seeds the catalog and starts the API and metrics servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.ServerConfig](serviceName, configloader.WithDefaults(config.ServerDefaults()))
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	broker, err := app.ConnectBroker(ctx, cfg.NATS, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := app.SetupDependencies(cfg, broker.Publisher, reg, logger)
	logDevToken(deps.Tokens, cfg, logger)

	httpServer := app.SetupHttpServer(deps, cfg)
	metricsServer := app.SetupMetricsServer(cfg.Metrics.Addr, reg)

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			logger.Info("Metrics server listening", slog.String("addr", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
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

// logDevToken prints a token for the seeded admin so the admin routes can be tried locally.
func logDevToken(tokens *catalogapi.TokenMaker, cfg *config.ServerConfig, logger *slog.Logger) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, u := range catalogapi.SeedUsers() {
		if !u.IsAdmin {
			continue
		}
		token, err := tokens.New(u, cfg.Auth.TokenTTL)
		if err != nil {
			logger.Warn("failed to issue dev token", "error", err)
			return
		}
		logger.Debug("dev admin token", "email", u.Email, "token", token)
		return
	}
}
