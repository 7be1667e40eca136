package cart

import (
	"slices"
	"strings"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// Item is a cart line: a snapshot of the product taken when it was added plus the chosen variant.
// It encodes flat, with the product fields alongside selectedSize, selectedColor and qty.
type Item struct {
	catalog.Product
	SelectedSize  string        `json:"selectedSize"`
	SelectedColor catalog.Color `json:"selectedColor"`
	Qty           int           `json:"qty"`
}

// Key identifies a line: at most one line exists per key.
type Key struct {
	ProductID string
	Size      string
	ColorName string
}

// Key returns the line identity of it.
func (it Item) Key() Key {
	return Key{ProductID: it.ID, Size: it.SelectedSize, ColorName: it.SelectedColor.Name}
}

// clone copies it so the line shares no slices with the caller.
func (it Item) clone() Item {
	it.Sizes = slices.Clone(it.Sizes)
	it.Colors = slices.Clone(it.Colors)
	it.Images = slices.Clone(it.Images)
	return it
}

// Total is price times quantity.
func (it Item) Total() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// LineItem is the checkout projection of a cart line consumed by the payment collaborator.
type LineItem struct {
	Name       string   `json:"name"`
	UnitAmount int64    `json:"unit_amount"`
	Quantity   int      `json:"quantity"`
	Images     []string `json:"images,omitempty"`
}

// minUnitAmount is the smallest chargeable amount in cents.
const minUnitAmount = 50

func lineItem(it Item) LineItem {
	cents := it.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	qty := it.Qty
	if qty < 1 {
		qty = 1
	}
	li := LineItem{
		Name:       it.Name,
		UnitAmount: max(cents, minUnitAmount),
		Quantity:   qty,
	}
	if len(it.Images) > 0 && strings.HasPrefix(it.Images[0], "http") {
		li.Images = []string{it.Images[0]}
	}
	return li
}
