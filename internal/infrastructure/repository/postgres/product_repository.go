package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/database"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const productColumns = `id, name, description, price, created_at, updated_at`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		price       NUMERIC(19, 2) NOT NULL CHECK (price >= 0),
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS products_name_description_idx ON products (name, description)`,
	`CREATE INDEX IF NOT EXISTS products_created_at_idx ON products (created_at, id)`,
}

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ProductRepository is a PostgreSQL implementation of domain.ProductRepository
type ProductRepository struct {
	db     *sql.DB
	q      DBTX
	tracer trace.Tracer
	logger *slog.Logger
	inTx   bool
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a repository backed by db
func NewProductRepository(db *sql.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		q:      db,
		tracer: tracer,
		logger: logger,
	}
}

// EnsureSchema creates the products table and its indexes when missing
func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	r.logger.InfoContext(ctx, "Database schema is up to date")
	return nil
}

// RunInTx runs fn inside a SERIALIZABLE transaction. Rows read through
// FindByID are locked until the transaction ends.
func (r *ProductRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, store domain.ProductStore) error) error {
	if r.inTx {
		return fn(ctx, r)
	}

	ctx, span := r.tracer.Start(ctx, "ProductRepository.RunInTx")
	defer span.End()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txRepo := &ProductRepository{
		db:     r.db,
		q:      tx,
		tracer: r.tracer,
		logger: r.logger,
		inTx:   true,
	}

	if err := fn(ctx, txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.ErrorContext(ctx, "Failed to roll back transaction",
				slog.String("error", rbErr.Error()),
			)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Transaction rolled back")
		return err
	}

	if err := tx.Commit(); err != nil {
		if database.IsSerializationFailure(err) {
			r.logger.WarnContext(ctx, "Transaction aborted by a concurrent write")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "Transaction committed")
	return nil
}

// Create stores a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.String("product.name", product.Name),
	)

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.Name, product.Description, product.Price, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

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

	// anything that is not a UUID cannot be stored
	if _, err := uuid.Parse(id); err != nil {
		span.SetStatus(codes.Error, "Product not found")
		return nil, &domain.ProductNotFoundError{ID: id}
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if r.inTx {
		query += ` FOR UPDATE`
	}

	product, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "Product not found")
		r.logger.DebugContext(ctx, "Product not found in repository",
			slog.String("product_id", id),
		)
		return nil, &domain.ProductNotFoundError{ID: id}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// Update replaces the stored fields of a product
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID))

	if _, err := uuid.Parse(product.ID); err != nil {
		span.SetStatus(codes.Error, "Product not found")
		return &domain.ProductNotFoundError{ID: product.ID}
	}

	res, err := r.q.ExecContext(ctx,
		`UPDATE products SET name = $2, description = $3, price = $4, updated_at = $5 WHERE id = $1`,
		product.ID, product.Name, product.Description, product.Price, product.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if err := expectAffected(res, product.ID); err != nil {
		span.SetStatus(codes.Error, "Product not found")
		return err
	}

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

	if _, err := uuid.Parse(id); err != nil {
		span.SetStatus(codes.Error, "Product not found")
		return &domain.ProductNotFoundError{ID: id}
	}

	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if err := expectAffected(res, id); err != nil {
		span.SetStatus(codes.Error, "Product not found")
		return err
	}

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

	res, err := r.q.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete products")
		return fmt.Errorf("failed to delete products: %w", err)
	}

	removed, _ := res.RowsAffected()
	span.SetAttributes(attribute.Int64("product.count", removed))
	r.logger.InfoContext(ctx, "All products deleted from repository",
		slog.Int64("count", removed),
	)

	span.SetStatus(codes.Ok, "Products deleted successfully")
	return nil
}

// FindAll retrieves all products ordered by creation
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	products, err := r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list products")
		return nil, err
	}

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

	where, args := buildSearchWhere(filter)
	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY created_at, id`

	var total int64
	if page.IsPaged() {
		if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to count products")
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, page.Size, page.Offset())
	}

	products, err := r.query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search products")
		return nil, err
	}
	if !page.IsPaged() {
		total = int64(len(products))
	}

	span.SetAttributes(
		attribute.Int("product.count", len(products)),
		attribute.Int64("product.total", total),
	)
	r.logger.InfoContext(ctx, "Products searched in repository",
		slog.Int("count", len(products)),
		slog.Int64("total", total),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return domain.NewProductPage(products, page, total), nil
}

// ExistsByNameAndDescription reports whether a product has exactly this pair
func (r *ProductRepository) ExistsByNameAndDescription(ctx context.Context, name, description string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ExistsByNameAndDescription")
	defer span.End()

	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND description = $2)`,
		name, description,
	).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to check product existence")
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}

	span.SetAttributes(attribute.Bool("product.exists", exists))
	return exists, nil
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func expectAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return &domain.ProductNotFoundError{ID: id}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchWhere renders the filter as a WHERE clause with positional
// arguments. The query text matches as a literal substring.
func buildSearchWhere(filter domain.ProductFilter) (string, []any) {
	if filter.IsEmpty() {
		return "", nil
	}

	var clauses []string
	var args []any

	if filter.Query != nil {
		args = append(args, "%"+likeEscaper.Replace(*filter.Query)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(`(name ILIKE $%d OR description ILIKE $%d)`, n, n))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf(`price >= $%d`, len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf(`price <= $%d`, len(args)))
	}

	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}
