package analytics

import (
	"context"
	"log/slog"

	"github.com/abgdnv/storefront/pkg/messaging"
)

// Recorder publishes events without ever failing the caller.
type Recorder struct {
	pub    messaging.Publisher
	logger *slog.Logger
}

func NewRecorder(pub messaging.Publisher, logger *slog.Logger) *Recorder {
	if pub == nil {
		pub = messaging.NoopPublisher{}
	}
	return &Recorder{pub: pub, logger: logger.With("component", "analytics")}
}

// Record publishes event and logs a failure.
func (r *Recorder) Record(ctx context.Context, event messaging.Event) {
	if err := r.pub.Publish(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "failed to publish analytics event", "subject", event.Subject(), "error", err)
	}
}
