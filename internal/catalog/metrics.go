package catalog

import (
	"errors"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records catalog API latency by operation and outcome.
type Metrics struct {
	duration *prometheus.HistogramVec
}

// NewMetrics registers the catalog client collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Latency of catalog API requests including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.duration)
	return m
}

func (m *Metrics) observe(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op, outcome(err)).Observe(d.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sferrors.ErrServer):
		return "server_error"
	case errors.Is(err, sferrors.ErrNetwork):
		return "network_error"
	default:
		return "error"
	}
}
