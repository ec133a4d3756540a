package domain

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a zero-based page. A zero Size means unpaged.
type PageRequest struct {
	Number int
	Size   int
}

// Unpaged requests every matching record
var Unpaged = PageRequest{}

// IsPaged reports whether the request limits the result set
func (p PageRequest) IsPaged() bool {
	return p.Size > 0
}

// Offset returns the number of records to skip. It saturates at
// math.MaxInt for page numbers far past any real result set.
func (p PageRequest) Offset() int {
	if !p.IsPaged() || p.Number <= 0 {
		return 0
	}
	if p.Number > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Number * p.Size
}

// ProductPage is one page of a product query
type ProductPage struct {
	Products      []*Product
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
}

// NewProductPage assembles a page and derives the page count from the total.
// For an unpaged request the whole result is a single page.
func NewProductPage(products []*Product, req PageRequest, total int64) *ProductPage {
	page := &ProductPage{
		Products:      products,
		Number:        req.Number,
		Size:          req.Size,
		TotalElements: total,
	}
	switch {
	case total == 0:
		page.TotalPages = 0
	case !req.IsPaged():
		page.Size = len(products)
		page.TotalPages = 1
	default:
		page.TotalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return page
}
