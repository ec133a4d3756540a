package mocks

import (
	"context"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

var _ domain.ProductRepository = (*MockProductRepository)(nil)

// RunInTx records the call and then runs fn against the mock itself
func (m *MockProductRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, store domain.ProductStore) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (*domain.ProductPage, error) {
	args := m.Called(ctx, filter, page)
	if res := args.Get(0); res != nil {
		return res.(*domain.ProductPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) ExistsByNameAndDescription(ctx context.Context, name, description string) (bool, error) {
	args := m.Called(ctx, name, description)
	return args.Bool(0), args.Error(1)
}
