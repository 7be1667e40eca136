package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/abgdnv/storefront/internal/catalogapi"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const catalogdService = "catalogd"

type Dependencies struct {
	Handler *catalogapi.Handler
	Tokens  *catalogapi.TokenMaker
	Metrics *web.HTTPMetrics
	Logger  *slog.Logger
}

// SetupDependencies seeds the in-memory catalog and directory. reg may be nil to skip metrics.
func SetupDependencies(cfg *config.ServerConfig, pub messaging.Publisher, reg prometheus.Registerer, logger *slog.Logger) *Dependencies {
	tokens := catalogapi.NewTokenMaker(cfg.Auth.Secret, cfg.Auth.Issuer)
	handler := catalogapi.NewHandler(
		catalogapi.NewInMemoryStore(catalogapi.SeedProducts()),
		catalogapi.NewDirectory(catalogapi.SeedUsers(), catalogapi.SeedOrders(time.Now())),
		tokens,
		analytics.NewRecorder(pub, logger),
		logger,
	)
	var metrics *web.HTTPMetrics
	if reg != nil {
		metrics = web.NewHTTPMetrics(reg)
	}
	return &Dependencies{Handler: handler, Tokens: tokens, Metrics: metrics, Logger: logger}
}

// SetupHttpHandler builds the catalogd router with the shared middleware stack.
// Used by tests to serve the API from an httptest.Server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger, catalogdService, deps.Metrics)
	deps.Handler.RegisterRoutes(mux)
	return mux
}

// SetupHttpServer creates and configures the catalogd HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.ServerConfig) *http.Server {
	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}
	return server.NewHTTPServer(httpCfg, SetupHttpHandler(deps))
}

// SetupMetricsServer serves the Prometheus exposition format on /metrics.
func SetupMetricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
