// Package pagination validates page/limit parameters and derives page metadata.
package pagination

import (
	"math"

	"healthdiary/pkg/apperr"
	"healthdiary/pkg/i18n"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Offset within int for any valid limit.
	MaxPage = math.MaxInt / MaxLimit
)

var (
	ErrInvalidPage  = apperr.New(apperr.Validation, i18n.KeyInvalidPage)
	ErrInvalidLimit = apperr.New(apperr.Validation, i18n.KeyInvalidLimit)
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// New validates page and limit: 1 <= page <= MaxPage and 1 <= limit <= MaxLimit.
func New(page, limit int) (Params, error) {
	if page < 1 || page > MaxPage {
		return Params{}, ErrInvalidPage
	}
	if limit < 1 || limit > MaxLimit {
		return Params{}, ErrInvalidLimit
	}
	return Params{Page: page, Limit: limit}, nil
}

// Offset is the number of rows to skip.
func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// Meta is derived from the params and the total row count.
type Meta struct {
	CurrentPage     int   `json:"currentPage"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewMeta computes page metadata. totalPages is ceil(total/limit).
func NewMeta(p Params, total int64) Meta {
	limit := int64(p.Limit)
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + limit - 1) / limit)
	}
	return Meta{
		CurrentPage:     p.Page,
		ItemsPerPage:    p.Limit,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}

// Page is one page of items with its metadata.
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// NewPage builds a Page. A nil slice is replaced by an empty one so it serializes as [].
func NewPage[T any](items []T, p Params, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Meta: NewMeta(p, total)}
}
