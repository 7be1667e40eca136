// Package config holds the process configuration for the storefront engine and the catalogd server.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Validator = (*ServerConfig)(nil)
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type CatalogConfig struct {
	BaseURL  string        `koanf:"baseurl"`
	PageSize int           `koanf:"pagesize"`
	Timeout  time.Duration `koanf:"timeout"`
}

type CacheConfig struct {
	SessionTTL time.Duration `koanf:"sessionttl"`
	DurableTTL time.Duration `koanf:"durablettl"`
	// SessionQuota bounds the session tier in bytes; 0 means unbounded.
	SessionQuota int `koanf:"sessionquota"`
}

type StorageConfig struct {
	Driver   string                `koanf:"driver"`
	Redis    config.RedisConfig    `koanf:"redis"`
	Database config.DatabaseConfig `koanf:"database"`
}

// Config configures the storefront engine: catalog client, caches, durable storage and analytics.
type Config struct {
	Catalog    CatalogConfig           `koanf:"catalog"`
	Cache      CacheConfig             `koanf:"cache"`
	Storage    StorageConfig           `koanf:"storage"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
	Warmup     WarmupConfig            `koanf:"warmup"`
	Metrics    MetricsConfig           `koanf:"metrics"`
	Log        config.LogConfig        `koanf:"log"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// WarmupConfig controls how often storefrontd refreshes the durable catalog lists.
type WarmupConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// Defaults returns the values Load starts from before yaml and env overrides.
func Defaults() map[string]any {
	return map[string]any{
		"catalog.baseurl":                               "http://localhost:8080/api",
		"catalog.pagesize":                              12,
		"catalog.timeout":                               "10s",
		"cache.sessionttl":                              "15m",
		"cache.durablettl":                              "30m",
		"storage.driver":                                DriverMemory,
		"storage.redis.keyprefix":                       "storefront:",
		"storage.redis.timeout":                         "5s",
		"storage.database.timeout":                      "5s",
		"resilience.retry.maxattempts":                  3,
		"resilience.retry.initialbackoff":               "200ms",
		"resilience.retry.maxbackoff":                   "2s",
		"resilience.circuitbreaker.consecutivefailures": 5,
		"resilience.circuitbreaker.errorratepercent":    50,
		"resilience.circuitbreaker.opentimeout":         "30s",
		"nats.timeout":                                  "5s",
		"nats.stream":                                   "STOREFRONT",
		"subscriber.subject":                            "catalog.product.changed",
		"subscriber.consumer":                           "storefront-cache",
		"subscriber.batch":                              10,
		"subscriber.timeout":                            "5s",
		"subscriber.interval":                           "1s",
		"subscriber.workers":                            1,
		"warmup.interval":                               "10m",
		"metrics.enabled":                               false,
		"metrics.addr":                                  ":9091",
		"log.level":                                     "info",
		"shutdown.timeout":                              "10s",
	}
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  catalog.baseurl: %s\n", c.Catalog.BaseURL))
	b.WriteString(fmt.Sprintf("  catalog.pagesize: %d\n", c.Catalog.PageSize))
	b.WriteString(fmt.Sprintf("  catalog.timeout: %s\n", c.Catalog.Timeout))

	b.WriteString("\n--- Cache ---\n")
	b.WriteString(fmt.Sprintf("  cache.sessionttl: %s\n", c.Cache.SessionTTL))
	b.WriteString(fmt.Sprintf("  cache.durablettl: %s\n", c.Cache.DurableTTL))
	b.WriteString(fmt.Sprintf("  cache.sessionquota: %d\n", c.Cache.SessionQuota))

	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  storage.driver: %s\n", c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverRedis:
		b.WriteString(c.Storage.Redis.String())
	case DriverPostgres:
		b.WriteString(c.Storage.Database.String())
	}

	b.WriteString(c.Resilience.String())
	b.WriteString(c.NATS.String())
	if c.NATS.Enabled {
		b.WriteString(c.Subscriber.String())
	}
	b.WriteString("\n--- Warmup ---\n")
	b.WriteString(fmt.Sprintf("  warmup.interval: %s\n", c.Warmup.Interval))
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Resilience.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if c.NATS.Enabled {
		if err := c.Subscriber.Validate(); err != nil {
			return err
		}
	}
	if c.Warmup.Interval < 0 {
		return fmt.Errorf("warmup interval must not be negative")
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}

func (c *CatalogConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || c.BaseURL == "" {
		return fmt.Errorf("catalog base URL is not configured")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("catalog base URL must be http or https: %s", c.BaseURL)
	}
	if c.PageSize <= 0 || c.PageSize > 48 {
		return fmt.Errorf("catalog page size must be between 1 and 48: %d", c.PageSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("catalog request timeout is not configured")
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if c.SessionTTL < 0 || c.DurableTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if c.SessionQuota < 0 {
		return fmt.Errorf("cache session quota must not be negative: %d", c.SessionQuota)
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverRedis:
		return c.Redis.Validate()
	case DriverPostgres:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Driver)
	}
}

// ServerConfig configures catalogd, the reference catalog API.
type ServerConfig struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Metrics    MetricsConfig         `koanf:"metrics"`
	Auth       config.AuthConfig     `koanf:"auth"`
	NATS       config.NATSConfig     `koanf:"nats"`
	Log        config.LogConfig      `koanf:"log"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
}

// MetricsConfig controls the Prometheus /metrics listener.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *MetricsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Metrics ---\n")
	b.WriteString(fmt.Sprintf("  metrics.enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  metrics.addr: %s\n", c.Addr))
	return b.String()
}

func (c *MetricsConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("metrics address is not configured")
	}
	return nil
}

// ServerDefaults returns the values catalogd starts from before yaml and env overrides.
func ServerDefaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "2s",
		"metrics.enabled":           true,
		"metrics.addr":              ":9090",
		"auth.issuer":               "catalogd",
		"auth.tokenttl":             "24h",
		"nats.timeout":              "5s",
		"nats.stream":               "STOREFRONT",
		"log.level":                 "info",
		"shutdown.timeout":          "10s",
	}
}

func (c *ServerConfig) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Auth.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

func (c *ServerConfig) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Shutdown.Validate()
}
