package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productDeletedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productDeletedCounter, _ := meter.Int64Counter(
		"products.deleted.total",
		metric.WithDescription("Total number of products deleted"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productDeletedCounter: productDeletedCounter,
		productOperations:     productOperations,
	}
}

// CreateProduct creates a new product unless one with the same name and
// description already exists
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	name, description, price := req.Values()

	span.SetAttributes(
		attribute.String("product.name", name),
		attribute.String("product.price", price.String()),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", name),
		slog.String("price", price.String()),
	)

	var product *domain.Product
	err := s.repo.RunInTx(ctx, func(ctx context.Context, store domain.ProductStore) error {
		exists, err := store.ExistsByNameAndDescription(ctx, name, description)
		if err != nil {
			return err
		}
		if exists {
			return &domain.DuplicateProductError{Name: name, Description: description}
		}

		p := domain.NewProduct(name, description, price)
		if err := store.Create(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	span.SetAttributes(attribute.String("product.id", product.ID))

	s.productCreatedCounter.Add(ctx, 1)
	s.record(ctx, "create", "success")

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.String("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(product), nil
}

// UpdateProduct replaces name, description and price of an existing product.
// The name and description pair is not checked for duplicates here.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	name, description, price := req.Values()

	span.SetAttributes(
		attribute.String("product.id", id),
		attribute.String("product.name", name),
	)

	s.logger.InfoContext(ctx, "Updating product",
		slog.String("product_id", id),
	)

	var product *domain.Product
	err := s.repo.RunInTx(ctx, func(ctx context.Context, store domain.ProductStore) error {
		p, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}

		p.Replace(name, description, price)
		if err := store.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, "update", err)
	}

	s.record(ctx, "update", "success")

	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return dto.ToProductResponse(product), nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Getting product by ID",
		slog.String("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "read", err)
	}

	s.record(ctx, "read", "success")

	s.logger.InfoContext(ctx, "Product retrieved successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves all products
func (s *ProductService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	s.record(ctx, "list", "success")

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// ListProductsPage retrieves one page of all products
func (s *ProductService) ListProductsPage(ctx context.Context, params dto.PageParams) (*dto.PageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProductsPage")
	defer span.End()

	page, err := s.search(ctx, span, "list", domain.ProductFilter{}, params.ToPageRequest())
	if err != nil {
		return nil, err
	}
	return dto.ToPageResponse(page), nil
}

// SearchProducts retrieves every product matching the search params
func (s *ProductService) SearchProducts(ctx context.Context, params dto.SearchParams) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SearchProducts")
	defer span.End()

	page, err := s.search(ctx, span, "search", params.ToFilter(), domain.Unpaged)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponseList(page.Products), nil
}

// SearchProductsPage retrieves one page of the products matching the
// search params
func (s *ProductService) SearchProductsPage(ctx context.Context, params dto.SearchParams, pageParams dto.PageParams) (*dto.PageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SearchProductsPage")
	defer span.End()

	page, err := s.search(ctx, span, "search", params.ToFilter(), pageParams.ToPageRequest())
	if err != nil {
		return nil, err
	}
	return dto.ToPageResponse(page), nil
}

func (s *ProductService) search(
	ctx context.Context,
	span trace.Span,
	operation string,
	filter domain.ProductFilter,
	req domain.PageRequest,
) (*domain.ProductPage, error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("search.paged", req.IsPaged()),
		attribute.Int("page.number", req.Number),
		attribute.Int("page.size", req.Size),
	}
	logAttrs := []any{
		slog.Bool("paged", req.IsPaged()),
		slog.Int("page", req.Number),
		slog.Int("size", req.Size),
	}
	if filter.Query != nil {
		attrs = append(attrs, attribute.String("search.query", *filter.Query))
		logAttrs = append(logAttrs, slog.String("query", *filter.Query))
	}
	if filter.MinPrice != nil {
		attrs = append(attrs, attribute.String("search.min_price", filter.MinPrice.String()))
		logAttrs = append(logAttrs, slog.String("min_price", filter.MinPrice.String()))
	}
	if filter.MaxPrice != nil {
		attrs = append(attrs, attribute.String("search.max_price", filter.MaxPrice.String()))
		logAttrs = append(logAttrs, slog.String("max_price", filter.MaxPrice.String()))
	}
	span.SetAttributes(attrs...)

	s.logger.InfoContext(ctx, "Searching products", logAttrs...)

	page, err := s.repo.Search(ctx, filter, req)
	if err != nil {
		return nil, s.fail(ctx, span, operation, err)
	}

	span.SetAttributes(
		attribute.Int("product.count", len(page.Products)),
		attribute.Int64("product.total", page.TotalElements),
	)

	s.record(ctx, operation, "success")

	s.logger.InfoContext(ctx, "Products searched successfully",
		slog.Int("count", len(page.Products)),
		slog.Int64("total", page.TotalElements),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return page, nil
}

// DeleteProduct removes a product. The product is looked up first so a
// missing ID never reaches the delete.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.String("product_id", id),
	)

	err := s.repo.RunInTx(ctx, func(ctx context.Context, store domain.ProductStore) error {
		if _, err := store.FindByID(ctx, id); err != nil {
			return err
		}
		return store.Delete(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, span, "delete", err)
	}

	s.productDeletedCounter.Add(ctx, 1)
	s.record(ctx, "delete", "success")

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

// DeleteAllProducts removes every product
func (s *ProductService) DeleteAllProducts(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteAllProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Deleting all products")

	if err := s.repo.DeleteAll(ctx); err != nil {
		return s.fail(ctx, span, "delete_all", err)
	}

	s.record(ctx, "delete_all", "success")

	s.logger.InfoContext(ctx, "All products deleted successfully")

	span.SetStatus(codes.Ok, "All products deleted successfully")
	return nil
}

func (s *ProductService) record(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

// fail records a failed operation on the span, the log and the operations
// counter. Domain errors are returned as is; anything else is wrapped.
func (s *ProductService) fail(ctx context.Context, span trace.Span, operation string, err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		span.SetStatus(codes.Error, "Product not found")
		s.logger.WarnContext(ctx, "Product not found",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		s.record(ctx, operation, "not_found")
		return err

	case errors.Is(err, domain.ErrProductAlreadyExists):
		span.SetStatus(codes.Error, "Duplicate product")
		s.logger.WarnContext(ctx, "Product already exists",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		s.record(ctx, operation, "duplicate")
		return err
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "Product operation failed")
	s.logger.ErrorContext(ctx, "Product operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	s.record(ctx, operation, "failure")
	return fmt.Errorf("%s product: %w", operation, err)
}
