package app

import (
	"context"
	"log/slog"

	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/abgdnv/storefront/internal/cache"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/shop"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/prometheus/client_golang/prometheus"
)

// Storefront is the assembled catalog engine for one shopper session.
type Storefront struct {
	Catalog *catalog.Service
	Shop    *shop.Shop
	Session *storage.Memory
	Durable storage.Storage
}

// StorefrontMetrics groups the engine collectors so several engines can share one registry.
type StorefrontMetrics struct {
	Cache   *cache.Metrics
	Catalog *catalog.Metrics
}

// NewStorefrontMetrics registers the engine collectors with reg.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	return &StorefrontMetrics{Cache: cache.NewMetrics(reg), Catalog: catalog.NewMetrics(reg)}
}

// SetupStorefront builds the engine over durable and a fresh session tier.
// metrics may be nil.
func SetupStorefront(ctx context.Context, cfg *config.Config, durable storage.Storage, pub messaging.Publisher, metrics *StorefrontMetrics, logger *slog.Logger) *Storefront {
	var (
		cacheMetrics  *cache.Metrics
		clientMetrics *catalog.Metrics
	)
	if metrics != nil {
		cacheMetrics, clientMetrics = metrics.Cache, metrics.Catalog
	}

	session := storage.NewMemory(cfg.Cache.SessionQuota)
	pages := cache.New[catalog.PageResult](session, cfg.Cache.SessionTTL,
		cache.WithName("pages"), cache.WithLogger(logger), cache.WithMetrics(cacheMetrics))
	lists := cache.New[[]catalog.Product](durable, cfg.Cache.DurableTTL,
		cache.WithName("lists"), cache.WithLogger(logger), cache.WithMetrics(cacheMetrics))

	client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, cfg.Resilience, logger,
		catalog.WithPageSize(cfg.Catalog.PageSize), catalog.WithClientMetrics(clientMetrics))
	svc := catalog.NewService(client, pages, lists, logger)

	recorder := analytics.NewRecorder(pub, logger)
	sh := shop.New(svc, filter.NewPreferences(durable, logger), cart.New(ctx, durable, logger), recorder, logger)

	return &Storefront{Catalog: svc, Shop: sh, Session: session, Durable: durable}
}
