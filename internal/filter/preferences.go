package filter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/abgdnv/storefront/internal/storage"
)

// PreferencesKey is the durable storage key of the last-used filter.
const PreferencesKey = "fec_filter_prefs"

// Preferences persists the shopper's last filter selection across sessions.
type Preferences struct {
	store  storage.Storage
	logger *slog.Logger
}

// NewPreferences creates a persister over the durable tier.
func NewPreferences(store storage.Storage, logger *slog.Logger) *Preferences {
	return &Preferences{
		store:  store,
		logger: logger.With("component", "filter_preferences"),
	}
}

// Save records spec. Write failures are logged and ignored.
func (p *Preferences) Save(ctx context.Context, spec Spec) {
	raw, err := json.Marshal(spec)
	if err == nil {
		err = p.store.Set(ctx, PreferencesKey, raw)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "failed to save filter preferences", "error", err)
	}
}

// Load returns the saved spec, or the empty spec when nothing usable was saved.
func (p *Preferences) Load(ctx context.Context) Spec {
	raw, err := p.store.Get(ctx, PreferencesKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.logger.WarnContext(ctx, "failed to read filter preferences", "error", err)
		}
		return Spec{}
	}
	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		p.logger.DebugContext(ctx, "ignoring undecodable filter preferences", "error", err)
		return Spec{}
	}
	if err := spec.Validate(); err != nil {
		p.logger.DebugContext(ctx, "ignoring invalid filter preferences", "error", err)
		return Spec{}
	}
	return spec
}
