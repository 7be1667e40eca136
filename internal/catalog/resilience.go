package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// newBreaker trips on consecutive failures or on the failure rate once enough
// requests were seen. Only transport failures and retryable statuses count as failures;
// a request the caller cancelled does not.
func newBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	st := gobreaker.Settings{
		Name:        "catalog-api-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures && cfg.ErrorRatePercent > 0 &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || !retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}
