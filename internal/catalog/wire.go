package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the paginated response shape.
type envelope struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	TotalCount *int      `json:"totalCount"`
	TotalPages int       `json:"totalPages"`
	HasMore    *bool     `json:"hasMore"`
}

// wirePage holds whichever of the two response shapes the server sent.
type wirePage struct {
	envelope *envelope
	legacy   []Product
}

func (w *wirePage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty catalog response")
	}
	switch data[0] {
	case '[':
		var products []Product
		if err := json.Unmarshal(data, &products); err != nil {
			return fmt.Errorf("failed to decode product list: %w", err)
		}
		w.legacy = products
		if w.legacy == nil {
			w.legacy = []Product{}
		}
		return nil
	case '{':
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("failed to decode page envelope: %w", err)
		}
		w.envelope = &env
		return nil
	default:
		return fmt.Errorf("unexpected catalog response starting with %q", data[0])
	}
}

// result resolves the wire shape into a PageResult for the requested page.
// A bare list is a complete single page. An envelope missing hasMore or totalCount
// has them derived from the page position.
func (w *wirePage) result(requested, limit int) PageResult {
	if w.envelope == nil {
		return PageResult{
			Products:   w.legacy,
			Page:       requested,
			TotalCount: len(w.legacy),
			HasMore:    false,
		}
	}

	env := w.envelope
	products := env.Products
	if products == nil {
		products = []Product{}
	}
	page := env.Page
	if page < 1 {
		page = requested
	}
	seen := (page-1)*limit + len(products)

	total := seen
	if env.TotalCount != nil {
		total = *env.TotalCount
	}

	var hasMore bool
	if env.HasMore != nil {
		hasMore = *env.HasMore
	} else {
		hasMore = seen < total
	}

	return PageResult{
		Products:   products,
		Page:       page,
		TotalCount: total,
		HasMore:    hasMore,
	}
}

func decodePage(body []byte, requested, limit int) (PageResult, error) {
	var w wirePage
	if err := json.Unmarshal(body, &w); err != nil {
		return PageResult{}, err
	}
	return w.result(requested, limit), nil
}
