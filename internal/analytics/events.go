// Package analytics publishes shopper behaviour events to the message broker.
package analytics

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/google/uuid"
)

const (
	FilterAppliedSubject  = "catalog.filter.applied"
	CartUpdatedSubject    = "cart.updated"
	ProductChangedSubject = "catalog.product.changed"
)

// StreamSubjects are captured by the analytics stream.
var StreamSubjects = []string{"catalog.>", "cart.>"}

var (
	_ messaging.Event = FilterAppliedEvent{}
	_ messaging.Event = CartUpdatedEvent{}
	_ messaging.Event = ProductChangedEvent{}
)

type FilterAppliedEvent struct {
	EventID    uuid.UUID   `json:"event_id"`
	Filter     filter.Spec `json:"filter"`
	Generation uint64      `json:"generation"`
	AppliedAt  time.Time   `json:"applied_at"`
}

// NewFilterApplied builds the event for spec becoming the active filter.
func NewFilterApplied(spec filter.Spec, generation uint64, at time.Time) FilterAppliedEvent {
	return FilterAppliedEvent{EventID: uuid.New(), Filter: spec, Generation: generation, AppliedAt: at.UTC()}
}

func (e FilterAppliedEvent) Subject() string {
	return FilterAppliedSubject
}

func (e FilterAppliedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// CartAction names the cart mutation that produced a CartUpdatedEvent.
type CartAction string

const (
	CartAdded   CartAction = "added"
	CartRemoved CartAction = "removed"
	CartCleared CartAction = "cleared"
)

type CartUpdatedEvent struct {
	EventID   uuid.UUID  `json:"event_id"`
	Action    CartAction `json:"action"`
	ProductID string     `json:"product_id,omitempty"`
	Size      string     `json:"size,omitempty"`
	Color     string     `json:"color,omitempty"`
	Qty       int        `json:"qty,omitempty"`
	Lines     int        `json:"lines"`
	Subtotal  string     `json:"subtotal"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (e CartUpdatedEvent) Subject() string {
	return CartUpdatedSubject
}

func (e CartUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// NewCartUpdated builds the event for a cart mutation. The variant fields are empty for a clear.
func NewCartUpdated(action CartAction, productID, size, color string, qty, lines int, subtotal string, at time.Time) CartUpdatedEvent {
	return CartUpdatedEvent{
		EventID:   uuid.New(),
		Action:    action,
		ProductID: productID,
		Size:      size,
		Color:     color,
		Qty:       qty,
		Lines:     lines,
		Subtotal:  subtotal,
		UpdatedAt: at.UTC(),
	}
}

// ProductAction names the admin mutation behind a ProductChangedEvent.
type ProductAction string

const (
	ProductCreated ProductAction = "created"
	ProductUpdated ProductAction = "updated"
	ProductDeleted ProductAction = "deleted"
)

// ProductChangedEvent tells storefront caches that a catalog entry changed.
type ProductChangedEvent struct {
	EventID   uuid.UUID     `json:"event_id"`
	Action    ProductAction `json:"action"`
	ProductID string        `json:"product_id"`
	ChangedAt time.Time     `json:"changed_at"`
}

func NewProductChanged(action ProductAction, productID string, at time.Time) ProductChangedEvent {
	return ProductChangedEvent{EventID: uuid.New(), Action: action, ProductID: productID, ChangedAt: at.UTC()}
}

func (e ProductChangedEvent) Subject() string {
	return ProductChangedSubject
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
