// Package catalog fetches catalog pages and products from the storefront API and caches them.
package catalog

import (
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryClothing Category = "Clothing"
	CategoryShoes    Category = "Shoes"
)

type Department string

const (
	DepartmentMen   Department = "Men"
	DepartmentWomen Department = "Women"
	DepartmentKids  Department = "Kids"
)

// Color is a named product color with its swatch hex.
type Color struct {
	Name string `json:"name" validate:"required"`
	Hex  string `json:"hex" validate:"omitempty,hexcolor"`
}

// Money is a decimal amount that encodes as a bare JSON number, the way the API sends prices.
type Money struct {
	decimal.Decimal
}

// NewMoney parses s, e.g. "29.99". It panics on malformed input and is meant for literals.
func NewMoney(s string) Money {
	return Money{decimal.RequireFromString(s)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

// Product is a catalog item as served by the API.
type Product struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       Money      `json:"price"`
	Category    Category   `json:"category"`
	Department  Department `json:"department"`
	Sizes       []string   `json:"sizes"`
	Colors      []Color    `json:"colors"`
	Images      []string   `json:"images"`
	IsTrending  bool       `json:"isTrending"`
	InStock     bool       `json:"inStock"`
}

// GetID returns the product identity.
func (p Product) GetID() string {
	return p.ID
}

// PageResult is one page of a filtered catalog listing.
type PageResult struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	TotalCount int       `json:"totalCount"`
	HasMore    bool      `json:"hasMore"`

	// FromCache is set when the page was served from the cache rather than the network.
	FromCache bool `json:"-"`
}
