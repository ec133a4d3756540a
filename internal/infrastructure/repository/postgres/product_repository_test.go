package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBuildSearchWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.ProductFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty filter",
			filter:    domain.ProductFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "query only",
			filter:    domain.ProductFilter{Query: strPtr("phone")},
			wantWhere: ` WHERE (name ILIKE $1 OR description ILIKE $1)`,
			wantArgs:  []any{"%phone%"},
		},
		{
			name:      "price range only",
			filter:    domain.ProductFilter{MinPrice: decPtr("10"), MaxPrice: decPtr("20.50")},
			wantWhere: ` WHERE price >= $1 AND price <= $2`,
			wantArgs:  []any{decimal.RequireFromString("10"), decimal.RequireFromString("20.50")},
		},
		{
			name:      "all criteria",
			filter:    domain.ProductFilter{Query: strPtr("a"), MinPrice: decPtr("1"), MaxPrice: decPtr("2")},
			wantWhere: ` WHERE (name ILIKE $1 OR description ILIKE $1) AND price >= $2 AND price <= $3`,
			wantArgs:  []any{"%a%", decimal.RequireFromString("1"), decimal.RequireFromString("2")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildSearchWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildSearchWhere_EscapesLikeWildcards(t *testing.T) {
	_, args := buildSearchWhere(domain.ProductFilter{Query: strPtr(`50%_off\`)})
	require.Len(t, args, 1)
	assert.Equal(t, `%50\%\_off\\%`, args[0])
}

func TestProductRepository_NonUUIDIsNotFound(t *testing.T) {
	// a nil db is never touched because the id is rejected first
	repo := NewProductRepository(nil, noop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	err = repo.Delete(ctx, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	err = repo.Update(ctx, &domain.Product{ID: "does-not-exist"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
