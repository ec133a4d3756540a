package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the product entity
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct builds a product that has not been stored yet. The ID is left
// empty and is assigned by the repository on Create.
func NewProduct(name, description string, price decimal.Decimal) *Product {
	now := time.Now().UTC()
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Replace overwrites the mutable fields of the product. The ID and
// creation time are kept.
func (p *Product) Replace(name, description string, price decimal.Decimal) {
	p.Name = name
	p.Description = description
	p.Price = price
	p.UpdatedAt = time.Now().UTC()
}

// Clone returns a copy of the product
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

// ProductFilter narrows a product search. Nil fields do not filter.
type ProductFilter struct {
	Query    *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// IsEmpty reports whether the filter matches every product
func (f ProductFilter) IsEmpty() bool {
	return f.Query == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// Matches reports whether p satisfies every set criterion. The query is a
// case-insensitive substring of the name or the description; price bounds
// are inclusive.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Query != nil {
		q := strings.ToLower(*f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
