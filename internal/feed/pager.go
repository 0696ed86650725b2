// Package feed implements the incremental listing feed used by API
// consumers: pages are fetched on demand, accumulated in order, and
// deduplicated by id.
package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/openstay/marketplace/backend/internal/models"
)

// DefaultPageSize matches the server's feed page length.
const DefaultPageSize = 10

// Source produces one feed page. Page numbering starts at 1.
type Source interface {
	Page(ctx context.Context, page, size int) ([]models.Listing, error)
}

// Pager accumulates feed pages. It guarantees at most one load in
// flight, never renders the same listing id twice, and stops asking for
// pages permanently once a short page signals the backend is exhausted.
type Pager struct {
	source   Source
	pageSize int

	mu      sync.Mutex
	page    int
	hasMore bool
	loading bool
	items   []models.Listing
	seen    map[string]struct{}
}

func NewPager(source Source, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		source:   source,
		pageSize: pageSize,
		hasMore:  true,
		seen:     map[string]struct{}{},
	}
}

// Trigger is the load signal, typically fired when a sentinel scrolls
// into view. It is a no-op while a load is in flight or after the feed
// is exhausted; both conditions are checked under the same lock that
// sets the loading flag, so concurrent triggers cannot double-load.
// A failed load clears the flag so a later trigger retries; there is no
// automatic retry.
func (p *Pager) Trigger(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.loading || !p.hasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = true
	next := p.page + 1
	p.mu.Unlock()

	batch, err := p.source.Page(ctx, next, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		log.Warn().Err(err).Int("page", next).Msg("feed page load failed")
		return false, err
	}

	p.page = next
	if len(batch) < p.pageSize {
		// Monotonic: once the backend runs dry the flag never resets.
		p.hasMore = false
	}
	for _, l := range batch {
		if _, dup := p.seen[l.ID]; dup {
			continue
		}
		p.seen[l.ID] = struct{}{}
		p.items = append(p.items, l)
	}
	return true, nil
}

// Items returns a snapshot of the accumulated listings in load order.
func (p *Pager) Items() []models.Listing {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Listing, len(p.items))
	copy(out, p.items)
	return out
}

// HasMore reports whether another page may exist.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a load is in flight.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}
