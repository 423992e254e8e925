package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"devevents/internal/domain"
)

const (
	DefaultPage     = domain.DefaultPage
	DefaultPageSize = domain.DefaultPageSize
	MaxPageSize     = domain.MaxPageSize
)

// ParseListQuery reads the date, mode, page and page_size query parameters.
// Filters are passed through trimmed; unusable page values fall back to the defaults
// and page_size is capped at MaxPageSize.
func ParseListQuery(r *http.Request) (domain.ListFilter, domain.PaginationParams) {
	q := r.URL.Query()
	filter := domain.ListFilter{
		Date: strings.TrimSpace(q.Get("date")),
		Mode: domain.Mode(strings.ToLower(strings.TrimSpace(q.Get("mode")))),
	}
	params := domain.PaginationParams{
		Page:     positiveInt(q.Get("page"), DefaultPage),
		PageSize: min(positiveInt(q.Get("page_size"), DefaultPageSize), MaxPageSize),
	}
	return filter, params
}

func positiveInt(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 1 {
		return v
	}
	return fallback
}

// PaginationMeta is the pagination block of a list response.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPaginationMeta(params domain.PaginationParams, total int) PaginationMeta {
	return PaginationMeta{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: params.TotalPages(total),
	}
}
