package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPublisher is a mock implementation of the messaging.Publisher interface
type mockPublisher struct {
	events []messaging.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e messaging.Event) error {
	m.events = append(m.events, e)
	return m.err
}

func Test_FilterAppliedEvent_Payload(t *testing.T) {
	// given
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewFilterApplied(filter.Spec{Department: "Men", Sizes: []string{"M"}}, 7, at)

	// when
	raw, err := e.Payload()

	// then
	require.NoError(t, err)
	assert.Equal(t, FilterAppliedSubject, e.Subject())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 7.0, decoded["generation"])
	assert.Equal(t, "2026-01-02T03:04:05Z", decoded["applied_at"])
	assert.Equal(t, map[string]any{
		"department": "Men", "category": "", "sizes": []any{"M"}, "colors": []any{}, "priceRange": "",
	}, decoded["filter"])
	assert.NotEmpty(t, decoded["event_id"])
}

func Test_Recorder(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "published"},
		{name: "publish failure is swallowed", err: errors.New("nats down")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			pub := &mockPublisher{err: tc.err}
			r := NewRecorder(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

			// when
			r.Record(context.Background(), CartUpdatedEvent{Action: CartCleared})

			// then
			require.Len(t, pub.events, 1)
			assert.Equal(t, CartUpdatedSubject, pub.events[0].Subject())
		})
	}
}

func Test_Recorder_NilPublisher(t *testing.T) {
	r := NewRecorder(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NotPanics(t, func() { r.Record(context.Background(), CartUpdatedEvent{}) })
}
