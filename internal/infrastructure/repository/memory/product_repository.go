package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// entry keeps the insertion sequence next to the product so listings are stable
type entry struct {
	product *domain.Product
	seq     uint64
}

type state struct {
	products map[string]entry
	nextSeq  uint64
}

func (s *state) clone() *state {
	products := make(map[string]entry, len(s.products))
	for id, e := range s.products {
		products[id] = e
	}
	return &state{products: products, nextSeq: s.nextSeq}
}

// ProductRepository is an in-memory implementation of domain.ProductRepository
type ProductRepository struct {
	mu     *sync.RWMutex
	state  *state
	tracer trace.Tracer
	logger *slog.Logger

	// inTx marks a view handed to RunInTx callbacks; the write lock is
	// already held by the enclosing transaction.
	inTx bool
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		mu:     &sync.RWMutex{},
		state:  &state{products: make(map[string]entry)},
		tracer: tracer,
		logger: logger,
	}
}

func (r *ProductRepository) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func (r *ProductRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// RunInTx holds the write lock for the duration of fn and restores the
// previous state if fn fails.
func (r *ProductRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, store domain.ProductStore) error) error {
	if r.inTx {
		return fn(ctx, r)
	}

	ctx, span := r.tracer.Start(ctx, "ProductRepository.RunInTx")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.state.clone()
	tx := &ProductRepository{
		mu:     r.mu,
		state:  r.state,
		tracer: r.tracer,
		logger: r.logger,
		inTx:   true,
	}

	if err := fn(ctx, tx); err != nil {
		*r.state = *snapshot
		span.RecordError(err)
		span.SetStatus(codes.Error, "Transaction rolled back")
		r.logger.DebugContext(ctx, "Transaction rolled back",
			slog.String("error", err.Error()),
		)
		return err
	}

	span.SetStatus(codes.Ok, "Transaction committed")
	return nil
}

// Create stores a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	unlock := r.lock()
	defer unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.String("product.name", product.Name),
	)

	if _, exists := r.state.products[product.ID]; exists {
		err := fmt.Errorf("product id %s is already in use", product.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Product id conflict")
		return err
	}

	r.state.nextSeq++
	r.state.products[product.ID] = entry{product: product.Clone(), seq: r.state.nextSeq}

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.String("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	unlock := r.rlock()
	defer unlock()

	e, exists := r.state.products[id]
	if !exists {
		span.SetStatus(codes.Error, "Product not found")
		r.logger.DebugContext(ctx, "Product not found in repository",
			slog.String("product_id", id),
		)
		return nil, &domain.ProductNotFoundError{ID: id}
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.String("product_id", id),
		slog.String("product_name", e.product.Name),
	)

	span.SetStatus(codes.Ok, "Product found")
	return e.product.Clone(), nil
}

// Update replaces a stored product, keeping its position in listings
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID))

	unlock := r.lock()
	defer unlock()

	e, exists := r.state.products[product.ID]
	if !exists {
		span.SetStatus(codes.Error, "Product not found")
		return &domain.ProductNotFoundError{ID: product.ID}
	}

	r.state.products[product.ID] = entry{product: product.Clone(), seq: e.seq}

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.String("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// Delete removes a product by ID
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	unlock := r.lock()
	defer unlock()

	if _, exists := r.state.products[id]; !exists {
		span.SetStatus(codes.Error, "Product not found")
		return &domain.ProductNotFoundError{ID: id}
	}
	delete(r.state.products, id)

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

// DeleteAll removes every product
func (r *ProductRepository) DeleteAll(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteAll")
	defer span.End()

	unlock := r.lock()
	defer unlock()

	removed := len(r.state.products)
	r.state.products = make(map[string]entry)

	span.SetAttributes(attribute.Int("product.count", removed))
	r.logger.InfoContext(ctx, "All products deleted from repository",
		slog.Int("count", removed),
	)

	span.SetStatus(codes.Ok, "Products deleted successfully")
	return nil
}

// FindAll retrieves all products in insertion order
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	unlock := r.rlock()
	defer unlock()

	products := r.ordered(domain.ProductFilter{})

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// Search returns the requested page of products matching filter
func (r *ProductRepository) Search(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (*domain.ProductPage, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Search")
	defer span.End()

	span.SetAttributes(
		attribute.Int("page.number", page.Number),
		attribute.Int("page.size", page.Size),
	)

	unlock := r.rlock()
	defer unlock()

	matches := r.ordered(filter)
	total := int64(len(matches))

	content := matches
	if page.IsPaged() {
		content = []*domain.Product{}
		// pages past the last one are empty
		if lastPage := (len(matches) - 1) / page.Size; len(matches) > 0 && page.Number <= lastPage {
			start := page.Offset()
			end := min(start+page.Size, len(matches))
			content = matches[start:end]
		}
	}

	span.SetAttributes(
		attribute.Int("product.count", len(content)),
		attribute.Int64("product.total", total),
	)

	r.logger.InfoContext(ctx, "Products searched in repository",
		slog.Int("count", len(content)),
		slog.Int64("total", total),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return domain.NewProductPage(content, page, total), nil
}

// ExistsByNameAndDescription reports whether a product has exactly this pair
func (r *ProductRepository) ExistsByNameAndDescription(ctx context.Context, name, description string) (bool, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.ExistsByNameAndDescription")
	defer span.End()

	unlock := r.rlock()
	defer unlock()

	for _, e := range r.state.products {
		if e.product.Name == name && e.product.Description == description {
			span.SetAttributes(attribute.Bool("product.exists", true))
			return true, nil
		}
	}

	span.SetAttributes(attribute.Bool("product.exists", false))
	return false, nil
}

// ordered returns copies of the matching products sorted by insertion.
// Callers must hold a lock.
func (r *ProductRepository) ordered(filter domain.ProductFilter) []*domain.Product {
	entries := make([]entry, 0, len(r.state.products))
	for _, e := range r.state.products {
		if filter.Matches(e.product) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	products := make([]*domain.Product, len(entries))
	for i, e := range entries {
		products[i] = e.product.Clone()
	}
	return products
}
