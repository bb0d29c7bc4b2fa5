// Package admin implements the admin console screens: elections,
// candidates, users, access, notifications, results and history.
package admin

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"votedesk/internal/domain"
	"votedesk/internal/validation"
)

// ErrConfirmationRequired is returned by destructive operations called
// without confirmation. No request is made.
var ErrConfirmationRequired = errors.New("admin: confirmation required")

// Fetcher loads one page of T
type Fetcher[T any] func(ctx context.Context, q domain.ListQuery) (domain.Page[T], error)

// Resource is a paginated, filterable, searchable list of T. Every admin
// list screen is one Resource over its own Fetcher.
type Resource[T any] struct {
	mu    sync.RWMutex
	fetch Fetcher[T]
	query domain.ListQuery
	page  domain.Page[T]
}

// NewResource creates a resource at page 1. base filters are always sent.
func NewResource[T any](fetch Fetcher[T], base map[string]string) *Resource[T] {
	filters := make(map[string]string, len(base))
	for k, v := range base {
		filters[k] = v
	}
	return &Resource[T]{
		fetch: fetch,
		query: domain.ListQuery{Page: 1, Limit: domain.DefaultPageSize, Filters: filters},
	}
}

// Load fetches the current page
func (r *Resource[T]) Load(ctx context.Context) error {
	r.mu.RLock()
	q := r.query
	r.mu.RUnlock()

	page, err := r.fetch(ctx, q)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.page = page
	r.mu.Unlock()
	return nil
}

// SetSearch changes the search term and rewinds to page 1
func (r *Resource[T]) SetSearch(term string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.query.Search = validation.FoldSearch(term)
	r.query.Page = 1
}

// SetFilter sets or, with an empty value, removes a filter and rewinds to page 1
func (r *Resource[T]) SetFilter(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if value == "" {
		delete(r.query.Filters, key)
	} else {
		r.query.Filters[key] = value
	}
	r.query.Page = 1
}

// SetLimit changes the page size
func (r *Resource[T]) SetLimit(limit int) {
	if limit < 1 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.query.Limit = limit
	r.query.Page = 1
}

// Page selects page n, clamped to the known page count
func (r *Resource[T]) Page(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.page.TotalPages > 0 && n > r.page.TotalPages {
		n = r.page.TotalPages
	}
	if n < 1 {
		n = 1
	}
	r.query.Page = n
}

// Next moves forward one page if there is one
func (r *Resource[T]) Next() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.page.HasNext() {
		return false
	}
	r.query.Page = r.page.Page + 1
	return true
}

// Prev moves back one page if there is one
func (r *Resource[T]) Prev() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.page.HasPrev() {
		return false
	}
	r.query.Page = r.page.Page - 1
	return true
}

func (r *Resource[T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page.Items
}

// Meta is the last loaded page without its items
func (r *Resource[T]) Meta() domain.Page[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta := r.page
	meta.Items = nil
	return meta
}

func (r *Resource[T]) Query() domain.ListQuery {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := r.query
	q.Filters = make(map[string]string, len(r.query.Filters))
	for k, v := range r.query.Filters {
		q.Filters[k] = v
	}
	return q
}

// Link returns the query string selecting page n with the current search
// and filters, for pagination links.
func (r *Resource[T]) Link(n int) string {
	q := r.Query()
	q.Page = n
	return q.Values().Encode()
}

// Apply reads page, limit, search and the allowed filter keys from v.
// Unknown parameters are ignored.
func (r *Resource[T]) Apply(v url.Values, filterKeys ...string) {
	if term := strings.TrimSpace(v.Get("search")); term != "" {
		r.SetSearch(term)
	}
	for _, k := range filterKeys {
		if val := strings.TrimSpace(v.Get(k)); val != "" {
			r.SetFilter(k, val)
		}
	}
	if limit, err := strconv.Atoi(v.Get("limit")); err == nil {
		r.SetLimit(limit)
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 1 {
		r.mu.Lock()
		r.query.Page = n
		r.mu.Unlock()
	}
}
