package utils

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	// maxPage keeps Skip far from int64 overflow.
	maxPage = 1 << 20
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

func ParsePage(r *http.Request) Page {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Page{Page: page, Limit: limit}
}

// ParseFloat returns the query value as a float, or nil when absent or malformed.
func ParseFloat(r *http.Request, key string) *float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Paged is the envelope for list responses.
type Paged[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func NewPaged[T any](items []T, total int64, p Page) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}
