package cache

import "github.com/prometheus/client_golang/prometheus"

const (
	eventHit          = "hit"
	eventMiss         = "miss"
	eventExpired      = "expired"
	eventCorrupt      = "corrupt"
	eventWrite        = "write"
	eventWriteFailure = "write_failure"
	eventEvict        = "evict"
)

// Metrics counts cache events per named store.
type Metrics struct {
	events *prometheus.CounterVec
}

// NewMetrics registers the cache collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache lookups, writes and evictions by store and outcome.",
		}, []string{"cache", "event"}),
	}
	reg.MustRegister(m.events)
	return m
}

func (m *Metrics) inc(cache, event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(cache, event).Inc()
}
