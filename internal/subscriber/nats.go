// Package subscriber consumes catalog change events and refreshes the durable catalog lists.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// Warmer refetches cached catalog lists.
type Warmer interface {
	Warm(ctx context.Context) error
}

// ackableMsg is the part of jetstream.Msg the handler needs.
type ackableMsg interface {
	Data() []byte
	Subject() string
	Ack() error
	Term() error
}

// Start creates the durable consumer on stream and runs the configured number of workers
// until ctx is cancelled.
func Start(ctx context.Context, js jetstream.JetStream, stream string, cfg config.SubscriberConfig, warmer Warmer, logger *slog.Logger) error {
	consumer, err := js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		FilterSubject: cfg.Subject,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return err
	}
	logger = logger.With("component", "subscriber")
	g, gCtx := errgroup.WithContext(ctx)
	for range cfg.Workers {
		g.Go(func() error {
			return runWorker(gCtx, consumer, cfg, warmer, logger)
		})
	}
	return g.Wait()
}

// runWorker fetches batches from the consumer and handles them one by one.
func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, warmer Warmer, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			logger.ErrorContext(ctx, "failed to fetch messages", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
			continue
		}
		for msg := range batch.Messages() {
			handleMessage(ctx, msg, warmer, logger)
		}
	}
}

// handleMessage refreshes the lists for one product change. Undecodable messages are
// terminated so they are not redelivered.
func handleMessage(ctx context.Context, msg ackableMsg, warmer Warmer, logger *slog.Logger) {
	if msg == nil {
		logger.ErrorContext(ctx, "received nil message")
		return
	}
	var event analytics.ProductChangedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil || event.ProductID == "" {
		logger.ErrorContext(ctx, "failed to decode product change", "error", err, "subject", msg.Subject())
		if err := msg.Term(); err != nil {
			logger.ErrorContext(ctx, "failed to terminate message", "error", err)
		}
		return
	}

	logger.InfoContext(ctx, "received product change",
		slog.String("product_id", event.ProductID),
		slog.String("action", string(event.Action)),
		slog.String("changed_at", event.ChangedAt.Format(time.RFC3339)))

	if err := warmer.Warm(ctx); err != nil {
		logger.WarnContext(ctx, "failed to rewarm catalog lists; readers will refetch", "error", err)
	}
	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}
