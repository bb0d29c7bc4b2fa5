package domain

import (
	"net/url"
	"sort"
	"strconv"
)

// DefaultPageSize used when a query does not set one
const DefaultPageSize = 10

// ListQuery is the filter/search/paging input for list endpoints
type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Values encodes the query for the API
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if q.Filters[k] != "" {
			v.Set(k, q.Filters[k])
		}
	}
	return v
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports a following page
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports a preceding page
func (p Page[T]) HasPrev() bool { return p.Page > 1 }
