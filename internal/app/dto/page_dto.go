package dto

import (
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PageParams carries the optional pagination query parameters
type PageParams struct {
	Page *int
	Size *int
}

// IsSet reports whether the caller asked for a paged response
func (p PageParams) IsSet() bool {
	return p.Page != nil || p.Size != nil
}

// ToPageRequest applies the defaults and bounds: page 0 and size 20 when
// absent, negative pages start at 0, size is kept within 1..100.
func (p PageParams) ToPageRequest() domain.PageRequest {
	req := domain.PageRequest{Number: 0, Size: domain.DefaultPageSize}
	if p.Page != nil && *p.Page > 0 {
		req.Number = *p.Page
	}
	if p.Size != nil {
		req.Size = min(max(*p.Size, 1), domain.MaxPageSize)
	}
	return req
}

// SearchParams carries the optional search filters
type SearchParams struct {
	Query    *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// ToFilter converts the params to a domain filter. An empty query does not
// filter.
func (p SearchParams) ToFilter() domain.ProductFilter {
	filter := domain.ProductFilter{
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
	}
	if p.Query != nil && *p.Query != "" {
		filter.Query = p.Query
	}
	return filter
}

// PageResponse is the paged envelope
type PageResponse struct {
	Content       []*ProductResponse `json:"content"`
	PageNumber    int                `json:"pageNumber"`
	PageSize      int                `json:"pageSize"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
}

// ToPageResponse converts a domain page to the envelope
func ToPageResponse(page *domain.ProductPage) *PageResponse {
	return &PageResponse{
		Content:       ToProductResponseList(page.Products),
		PageNumber:    page.Number,
		PageSize:      page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}
