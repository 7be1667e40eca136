// Package pagination owns the accumulated catalog listing for the active filter.
//
// Every filter change starts a new generation. A page fetch is tagged with the
// generation it was dispatched under and its result is discarded if the generation
// moved on before it resolved.
package pagination

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/abgdnv/storefront/internal/catalog"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	ctxlog "github.com/abgdnv/storefront/pkg/logger"
)

// PageSource serves catalog pages, normally catalog.Service.
type PageSource interface {
	Page(ctx context.Context, spec filter.Spec, page int) (catalog.PageResult, error)
	Invalidate(ctx context.Context, spec filter.Spec, throughPage int)
}

// Outcome reports what LoadNextPage did.
type Outcome int

const (
	// Skipped means no request was issued: a load was in flight or there are no more pages.
	Skipped Outcome = iota
	// Merged means the page was merged into the listing.
	Merged
	// Discarded means the page resolved after a filter change and was dropped.
	Discarded
	// Failed means the request failed; the listing is unchanged.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Merged:
		return "merged"
	case Discarded:
		return "discarded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// State is the catalog listing as exposed to the presentation layer.
type State struct {
	Products    []catalog.Product
	CurrentPage int
	TotalCount  int
	HasMore     bool
	Filter      filter.Spec
	Generation  uint64

	// Loading is set while page 1 is loading, LoadingMore while a later page is.
	Loading     bool
	LoadingMore bool

	IsError bool
	Message string
}

// Controller is the only writer of the listing state. It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	source   PageSource
	logger   *slog.Logger
	state    State
	seen     map[string]struct{}
	inFlight bool
}

// NewController creates a Controller with an empty filter.
func NewController(source PageSource, logger *slog.Logger) *Controller {
	return &Controller{
		source: source,
		logger: logger.With("component", "pagination"),
		state: State{
			HasMore:    true,
			Generation: 1,
		},
		seen: make(map[string]struct{}),
	}
}

// SetFilter makes spec the active filter. If it differs from the active one the listing
// is reset, a new generation starts and any in-flight load is orphaned. It reports
// whether a reset happened.
func (c *Controller) SetFilter(spec filter.Spec) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if spec.Equal(c.state.Filter) {
		return false
	}
	c.resetLocked(spec.Canonical())
	c.logger.Debug("filter changed", "generation", c.state.Generation)
	return true
}

// LoadNextPage requests page CurrentPage+1 under the active filter and merges it.
// It does nothing when a load is already in flight or HasMore is false.
// On failure the listing is left as it was and the error is recorded in State.
func (c *Controller) LoadNextPage(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	gen, spec, page, ok := c.beginLocked()
	c.mu.Unlock()
	if !ok {
		return Skipped, nil
	}
	defer c.end(gen)

	return c.fetch(ctx, gen, spec, page)
}

// Refresh evicts the cached pages of the active filter, resets the listing under a new
// generation and loads page 1 again. The reload holds the in-flight guard from the reset
// on, so no other load can read the evicted pages in between.
func (c *Controller) Refresh(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	through := max(c.state.CurrentPage, 1)
	c.resetLocked(c.state.Filter)
	gen, spec, page, _ := c.beginLocked()
	c.mu.Unlock()
	defer c.end(gen)

	c.source.Invalidate(ctx, spec, through)
	return c.fetch(ctx, gen, spec, page)
}

// ClearError resets the error flag and message.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsError = false
	c.state.Message = ""
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Products = slices.Clone(c.state.Products)
	s.Filter = c.state.Filter.Canonical()
	return s
}

// Generation returns the active filter generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Generation
}

func (c *Controller) beginLocked() (gen uint64, spec filter.Spec, page int, ok bool) {
	if c.inFlight || !c.state.HasMore {
		return 0, filter.Spec{}, 0, false
	}
	c.inFlight = true
	page = c.state.CurrentPage + 1
	if page == 1 {
		c.state.Loading = true
	} else {
		c.state.LoadingMore = true
	}
	return c.state.Generation, c.state.Filter, page, true
}

func (c *Controller) fetch(ctx context.Context, gen uint64, spec filter.Spec, page int) (Outcome, error) {
	ctx = ctxlog.WithAttrs(ctx, slog.Uint64("generation", gen), slog.Int("page", page))
	res, err := c.source.Page(ctx, spec, page)
	return c.apply(ctx, gen, page, res, err)
}

// end clears the in-flight guard of generation gen. A newer generation owns its own guard.
func (c *Controller) end(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.state.Generation {
		return
	}
	c.inFlight = false
	c.state.Loading = false
	c.state.LoadingMore = false
}

func (c *Controller) apply(ctx context.Context, gen uint64, page int, res catalog.PageResult, err error) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.state.Generation {
		c.logger.DebugContext(ctx, "dropping page for superseded filter",
			"error", sferrors.ErrStaleResult, "active_generation", c.state.Generation)
		return Discarded, nil
	}

	if err != nil {
		c.state.IsError = true
		c.state.Message = sferrors.UserMessage(err)
		c.logger.WarnContext(ctx, "page load failed", "error", err)
		return Failed, err
	}

	added := 0
	for _, p := range res.Products {
		if _, dup := c.seen[p.ID]; dup {
			continue
		}
		c.seen[p.ID] = struct{}{}
		c.state.Products = append(c.state.Products, p)
		added++
	}
	c.state.CurrentPage = page
	c.state.TotalCount = res.TotalCount
	c.state.HasMore = res.HasMore && len(res.Products) > 0
	c.state.IsError = false
	c.state.Message = ""

	c.logger.DebugContext(ctx, "page merged",
		"received", len(res.Products), "added", added, "from_cache", res.FromCache,
		"total", res.TotalCount, "has_more", c.state.HasMore)
	return Merged, nil
}

func (c *Controller) resetLocked(spec filter.Spec) {
	c.state = State{
		Filter:     spec,
		HasMore:    true,
		Generation: c.state.Generation + 1,
	}
	c.seen = make(map[string]struct{})
	c.inFlight = false
}
