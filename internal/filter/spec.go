// Package filter defines the catalog filter specification, its cache key encoding
// and the persisted filter preferences.
package filter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PriceRange is an inclusive price bracket.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// ParsePriceRange parses the "min-max" wire form, e.g. "0-50".
func ParsePriceRange(s string) (*PriceRange, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return nil, fmt.Errorf("%w: price range %q is not min-max", sferrors.ErrInvalidFilter, s)
	}
	minPrice, err := decimal.NewFromString(strings.TrimSpace(lo))
	if err != nil {
		return nil, fmt.Errorf("%w: price range min %q: %w", sferrors.ErrInvalidFilter, lo, err)
	}
	maxPrice, err := decimal.NewFromString(strings.TrimSpace(hi))
	if err != nil {
		return nil, fmt.Errorf("%w: price range max %q: %w", sferrors.ErrInvalidFilter, hi, err)
	}
	return &PriceRange{Min: minPrice, Max: maxPrice}, nil
}

// String renders the "min-max" wire form.
func (p PriceRange) String() string {
	return p.Min.String() + "-" + p.Max.String()
}

// Contains reports whether price lies within the bracket, bounds included.
func (p PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(p.Min) && price.LessThanOrEqual(p.Max)
}

// Spec is a catalog filter selection. The zero value matches every product.
// Sizes and Colors are sets: their order carries no meaning.
type Spec struct {
	Department string      `validate:"omitempty,oneof=Men Women Kids"`
	Category   string      `validate:"omitempty,oneof=Clothing Shoes"`
	Sizes      []string    `validate:"dive,required"`
	Colors     []string    `validate:"dive,required"`
	PriceRange *PriceRange `validate:"-"`
}

// Canonical returns a copy with sizes and colors sorted and de-duplicated.
func (s Spec) Canonical() Spec {
	out := s
	out.Sizes = canonicalSet(s.Sizes)
	out.Colors = canonicalSet(s.Colors)
	if s.PriceRange != nil {
		pr := *s.PriceRange
		out.PriceRange = &pr
	}
	return out
}

// Equal reports structural equality, ignoring set order and duplicates.
func (s Spec) Equal(o Spec) bool {
	a, b := s.Canonical(), o.Canonical()
	if a.Department != b.Department || a.Category != b.Category {
		return false
	}
	if !slices.Equal(a.Sizes, b.Sizes) || !slices.Equal(a.Colors, b.Colors) {
		return false
	}
	switch {
	case a.PriceRange == nil && b.PriceRange == nil:
		return true
	case a.PriceRange == nil || b.PriceRange == nil:
		return false
	default:
		return a.PriceRange.Min.Equal(b.PriceRange.Min) && a.PriceRange.Max.Equal(b.PriceRange.Max)
	}
}

// IsZero reports whether the spec selects nothing.
func (s Spec) IsZero() bool {
	return s.Equal(Spec{})
}

// Validate checks enum membership and the price bracket.
func (s Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrInvalidFilter, err)
	}
	if pr := s.PriceRange; pr != nil {
		if pr.Min.IsNegative() || pr.Min.GreaterThan(pr.Max) {
			return fmt.Errorf("%w: price range %s", sferrors.ErrInvalidFilter, pr)
		}
	}
	return nil
}

// specJSON is the persisted and wire shape: {"department","category","sizes","colors","priceRange":"min-max"}.
type specJSON struct {
	Department string   `json:"department"`
	Category   string   `json:"category"`
	Sizes      []string `json:"sizes"`
	Colors     []string `json:"colors"`
	PriceRange string   `json:"priceRange"`
}

func (s Spec) MarshalJSON() ([]byte, error) {
	w := specJSON{
		Department: s.Department,
		Category:   s.Category,
		Sizes:      s.Sizes,
		Colors:     s.Colors,
	}
	if w.Sizes == nil {
		w.Sizes = []string{}
	}
	if w.Colors == nil {
		w.Colors = []string{}
	}
	if s.PriceRange != nil {
		w.PriceRange = s.PriceRange.String()
	}
	return json.Marshal(w)
}

func (s *Spec) UnmarshalJSON(data []byte) error {
	var w specJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Spec{
		Department: w.Department,
		Category:   w.Category,
		Sizes:      w.Sizes,
		Colors:     w.Colors,
	}
	if w.PriceRange != "" {
		pr, err := ParsePriceRange(w.PriceRange)
		if err != nil {
			return err
		}
		out.PriceRange = pr
	}
	*s = out
	return nil
}

func canonicalSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
