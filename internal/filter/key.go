package filter

import (
	"net/url"
	"strconv"
	"strings"
)

const keyPrefix = "fec"

// Encode returns the cache key for page of the catalog under spec.
// Every segment is always present, so an absent field can never be confused with
// another field's value. Values are query-escaped, so they cannot contain the
// separators.
func Encode(spec Spec, page int) string {
	c := spec.Canonical()

	var b strings.Builder
	b.WriteString(keyPrefix)
	writeSegment(&b, "d", url.QueryEscape(c.Department))
	writeSegment(&b, "c", url.QueryEscape(c.Category))
	writeSegment(&b, "s", joinEscaped(c.Sizes))
	writeSegment(&b, "col", joinEscaped(c.Colors))
	price := ""
	if c.PriceRange != nil {
		price = c.PriceRange.String()
	}
	writeSegment(&b, "p", price)
	writeSegment(&b, "pg", strconv.Itoa(page))
	return b.String()
}

// Values returns the query parameters the catalog API filters by. Unset fields are omitted.
func Values(spec Spec) url.Values {
	c := spec.Canonical()
	v := url.Values{}
	if c.Department != "" {
		v.Set("department", c.Department)
	}
	if c.Category != "" {
		v.Set("category", c.Category)
	}
	if len(c.Sizes) > 0 {
		v.Set("sizes", strings.Join(c.Sizes, ","))
	}
	if len(c.Colors) > 0 {
		v.Set("colors", strings.Join(c.Colors, ","))
	}
	if c.PriceRange != nil {
		v.Set("priceRange", c.PriceRange.String())
	}
	return v
}

// FromValues parses the query parameters produced by Values.
func FromValues(v url.Values) (Spec, error) {
	spec := Spec{
		Department: v.Get("department"),
		Category:   v.Get("category"),
		Sizes:      splitCSV(v.Get("sizes")),
		Colors:     splitCSV(v.Get("colors")),
	}
	if raw := v.Get("priceRange"); raw != "" {
		pr, err := ParsePriceRange(raw)
		if err != nil {
			return Spec{}, err
		}
		spec.PriceRange = pr
	}
	return spec, nil
}

func writeSegment(b *strings.Builder, name, value string) {
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
}

func joinEscaped(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.QueryEscape(v)
	}
	return strings.Join(escaped, ",")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
