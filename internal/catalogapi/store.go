package catalogapi

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/abgdnv/storefront/internal/catalog"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/google/uuid"
)

// Query selects products matching Filter. A zero Limit returns every match after Skip.
type Query struct {
	Filter filter.Spec
	Skip   int
	Limit  int
}

// ProductStore abstracts the product catalog behind the API.
type ProductStore interface {
	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (catalog.Product, error)

	// Find returns one window of the matching products and the total match count.
	Find(ctx context.Context, q Query) ([]catalog.Product, int, error)

	// Create stores p under a new ID and returns it.
	Create(ctx context.Context, p catalog.Product) (catalog.Product, error)

	// Update applies fn to the stored product and returns the result.
	Update(ctx context.Context, id string, fn func(*catalog.Product)) (catalog.Product, error)

	// DeleteByID returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
}

// inMemory implements ProductStore using a map plus an insertion-ordered id list.
type inMemory struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
	order    []string
}

// NewInMemoryStore creates a ProductStore holding seed in the given order.
func NewInMemoryStore(seed []catalog.Product) ProductStore {
	s := &inMemory{products: make(map[string]catalog.Product, len(seed))}
	for _, p := range seed {
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

func (s *inMemory) FindByID(_ context.Context, id string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, sferrors.ErrProductNotFound
	}
	return p, nil
}

func (s *inMemory) Find(_ context.Context, q Query) ([]catalog.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]catalog.Product, 0, len(s.order))
	for _, id := range s.order {
		if p := s.products[id]; Matches(q.Filter, p) {
			matched = append(matched, p)
		}
	}
	total := len(matched)

	skip := max(q.Skip, 0)
	if skip >= total {
		return []catalog.Product{}, total, nil
	}
	end := total
	if q.Limit > 0 {
		end = min(skip+q.Limit, total)
	}
	return matched[skip:end], total, nil
}

func (s *inMemory) Create(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, nil
}

func (s *inMemory) Update(_ context.Context, id string, fn func(*catalog.Product)) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, sferrors.ErrProductNotFound
	}
	fn(&p)
	p.ID = id
	s.products[id] = p
	return p, nil
}

func (s *inMemory) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return sferrors.ErrProductNotFound
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *inMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

// Matches reports whether p satisfies spec. Sizes and colors match when any
// requested value is present; colors compare case-insensitively as substrings.
func Matches(spec filter.Spec, p catalog.Product) bool {
	if spec.Department != "" && string(p.Department) != spec.Department {
		return false
	}
	if spec.Category != "" && string(p.Category) != spec.Category {
		return false
	}
	if len(spec.Sizes) > 0 && !slices.ContainsFunc(p.Sizes, func(size string) bool {
		return slices.Contains(spec.Sizes, size)
	}) {
		return false
	}
	if len(spec.Colors) > 0 && !slices.ContainsFunc(p.Colors, func(c catalog.Color) bool {
		name := strings.ToLower(c.Name)
		return slices.ContainsFunc(spec.Colors, func(want string) bool {
			return strings.Contains(name, strings.ToLower(want))
		})
	}) {
		return false
	}
	if spec.PriceRange != nil && !spec.PriceRange.Contains(p.Price.Decimal) {
		return false
	}
	return true
}
