package domain

import (
	"context"
)

// ProductStore defines the storage operations on products
type ProductStore interface {
	// Create stores a new product, assigning its ID when empty
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	FindAll(ctx context.Context) ([]*Product, error)
	Search(ctx context.Context, filter ProductFilter, page PageRequest) (*ProductPage, error)
	ExistsByNameAndDescription(ctx context.Context, name, description string) (bool, error)
}

// ProductRepository defines the contract for product storage
type ProductRepository interface {
	ProductStore

	// RunInTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, store ProductStore) error) error
}
