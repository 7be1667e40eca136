package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	pnats "github.com/abgdnv/storefront/pkg/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// Broker is an optional JetStream connection. With NATS disabled JS is nil and
// Publisher drops every event.
type Broker struct {
	JS        jetstream.JetStream
	Publisher messaging.Publisher
	close     func()
}

func (b *Broker) Close() {
	if b.close != nil {
		b.close()
	}
}

// ConnectBroker connects to NATS when enabled and makes sure the analytics stream exists.
func ConnectBroker(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Broker, error) {
	if !cfg.Enabled {
		logger.Info("NATS is disabled; events are dropped")
		return &Broker{Publisher: messaging.NoopPublisher{}}, nil
	}
	nc, err := pnats.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := pnats.EnsureStream(streamCtx, js, cfg.Stream, analytics.StreamSubjects); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to prepare stream: %w", err)
	}
	logger.Info("Connected to NATS JetStream", "url", cfg.Url, "stream", cfg.Stream)
	return &Broker{JS: js, Publisher: pnats.NewNatsPublisher(js), close: nc.Close}, nil
}
