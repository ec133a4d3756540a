package dto

import (
	"strings"
	"time"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices are emitted as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductRequest is the body of create and update requests. Fields are
// pointers so a missing field can be told apart from a zero value.
type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

// ValidationError lists every problem found in a request
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "Validation error"
	}
	return strings.Join(e.Messages, ", ")
}

// Validate checks the request at the transport boundary
func (r *ProductRequest) Validate() error {
	var msgs []string
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		msgs = append(msgs, "Name is required")
	}
	if r.Description == nil {
		msgs = append(msgs, "Description is required")
	}
	switch {
	case r.Price == nil:
		msgs = append(msgs, "Price is required")
	case r.Price.IsNegative():
		msgs = append(msgs, "Price must be greater than or equal to 0")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// Values returns the request fields with missing ones as zero values
func (r *ProductRequest) Values() (name, description string, price decimal.Decimal) {
	if r.Name != nil {
		name = *r.Name
	}
	if r.Description != nil {
		description = *r.Description
	}
	if r.Price != nil {
		price = *r.Price
	}
	return name, description, price
}

// NewProductRequest builds a request from plain values
func NewProductRequest(name, description string, price decimal.Decimal) *ProductRequest {
	return &ProductRequest{Name: &name, Description: &description, Price: &price}
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
