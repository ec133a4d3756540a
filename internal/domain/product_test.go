package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductFilter_Matches(t *testing.T) {
	laptop := NewProduct("Laptop Pro", "15 inch workstation", decimal.RequireFromString("1500"))

	tests := []struct {
		name   string
		filter ProductFilter
		want   bool
	}{
		{"empty filter", ProductFilter{}, true},
		{"query matches name ignoring case", ProductFilter{Query: strPtr("laptop")}, true},
		{"query matches description", ProductFilter{Query: strPtr("WORKSTATION")}, true},
		{"query misses", ProductFilter{Query: strPtr("phone")}, false},
		{"query with price range", ProductFilter{Query: strPtr("laptop"), MinPrice: decPtr("1000"), MaxPrice: decPtr("2000")}, true},
		{"min price above", ProductFilter{Query: strPtr("laptop"), MinPrice: decPtr("1600")}, false},
		{"bounds are inclusive", ProductFilter{MinPrice: decPtr("1500.00"), MaxPrice: decPtr("1500")}, true},
		{"max price below", ProductFilter{MaxPrice: decPtr("1499.99")}, false},
		{"inverted range", ProductFilter{MinPrice: decPtr("2000"), MaxPrice: decPtr("1000")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(laptop))
		})
	}
}

func TestProductFilter_IsEmpty(t *testing.T) {
	assert.True(t, ProductFilter{}.IsEmpty())
	assert.False(t, ProductFilter{MaxPrice: decPtr("1")}.IsEmpty())
}

func TestProduct_Replace(t *testing.T) {
	p := NewProduct("A", "B", decimal.RequireFromString("1"))
	p.ID = "id-1"
	created := p.CreatedAt

	p.Replace("C", "D", decimal.RequireFromString("2.50"))

	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, "C", p.Name)
	assert.Equal(t, "D", p.Description)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, created, p.CreatedAt)
	assert.False(t, p.UpdatedAt.Before(created))
}

func TestNewProductPage(t *testing.T) {
	products := []*Product{{ID: "1"}, {ID: "2"}}

	page := NewProductPage(products, PageRequest{Number: 1, Size: 2}, 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.Size)
	assert.EqualValues(t, 5, page.TotalElements)

	empty := NewProductPage(nil, PageRequest{Number: 0, Size: 20}, 0)
	assert.Equal(t, 0, empty.TotalPages)

	exact := NewProductPage(products, PageRequest{Number: 0, Size: 2}, 4)
	assert.Equal(t, 2, exact.TotalPages)

	unpaged := NewProductPage(products, Unpaged, 2)
	assert.Equal(t, 1, unpaged.TotalPages)
	assert.Equal(t, 2, unpaged.Size)
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 40, PageRequest{Number: 2, Size: 20}.Offset())
	assert.Equal(t, 0, Unpaged.Offset())
	assert.False(t, Unpaged.IsPaged())
}

func TestPageRequest_OffsetSaturates(t *testing.T) {
	assert.Equal(t, math.MaxInt, PageRequest{Number: math.MaxInt, Size: 2}.Offset())
	assert.Equal(t, math.MaxInt, PageRequest{Number: 461168601842738791, Size: 20}.Offset())
	assert.Equal(t, math.MaxInt/100*100, PageRequest{Number: math.MaxInt / 100, Size: 100}.Offset())
}

func TestErrors(t *testing.T) {
	notFound := fmt.Errorf("lookup: %w", &ProductNotFoundError{ID: "42"})
	assert.True(t, errors.Is(notFound, ErrProductNotFound))
	assert.False(t, errors.Is(notFound, ErrProductAlreadyExists))
	assert.Contains(t, notFound.Error(), "42")

	dup := &DuplicateProductError{Name: "X", Description: "Y"}
	assert.ErrorIs(t, dup, ErrProductAlreadyExists)
	assert.Equal(t, "product with name 'X' and description 'Y' already exists", dup.Error())

	var target *ProductNotFoundError
	assert.True(t, errors.As(notFound, &target))
	assert.Equal(t, "42", target.ID)
}
