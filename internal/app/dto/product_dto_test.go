package dto

import (
	"encoding/json"
	"testing"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestProductRequest_Validate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := NewProductRequest("Lamp", "", decimal.Zero)
		assert.NoError(t, req.Validate())
	})

	t.Run("missing fields", func(t *testing.T) {
		var req ProductRequest
		require.NoError(t, json.Unmarshal([]byte(`{}`), &req))

		err := req.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Name is required", "Description is required", "Price is required"}, verr.Messages)
		assert.Equal(t, "Name is required, Description is required, Price is required", err.Error())
	})

	t.Run("blank name and negative price", func(t *testing.T) {
		req := NewProductRequest("  ", "d", decimal.RequireFromString("-10"))
		err := req.Validate()
		require.Error(t, err)
		assert.Equal(t, "Name is required, Price must be greater than or equal to 0", err.Error())
	})
}

func TestProductRequest_DecodesNumericAndStringPrice(t *testing.T) {
	var req ProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","description":"B","price":9.99}`), &req))
	_, _, price := req.Values()
	assert.True(t, price.Equal(decimal.RequireFromString("9.99")))

	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","description":"B","price":"19.90"}`), &req))
	_, _, price = req.Values()
	assert.True(t, price.Equal(decimal.RequireFromString("19.9")))
}

func TestProductResponse_PriceIsNumber(t *testing.T) {
	resp := ToProductResponse(&domain.Product{ID: "1", Name: "A", Price: decimal.RequireFromString("9.99")})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":9.99`)
}

func TestPageParams_ToPageRequest(t *testing.T) {
	tests := []struct {
		name   string
		params PageParams
		want   domain.PageRequest
	}{
		{"defaults", PageParams{}, domain.PageRequest{Number: 0, Size: 20}},
		{"only page", PageParams{Page: intPtr(3)}, domain.PageRequest{Number: 3, Size: 20}},
		{"size clamped", PageParams{Size: intPtr(500)}, domain.PageRequest{Number: 0, Size: 100}},
		{"size at max", PageParams{Size: intPtr(100)}, domain.PageRequest{Number: 0, Size: 100}},
		{"zero size", PageParams{Size: intPtr(0)}, domain.PageRequest{Number: 0, Size: 1}},
		{"negative page", PageParams{Page: intPtr(-2), Size: intPtr(5)}, domain.PageRequest{Number: 0, Size: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.ToPageRequest())
		})
	}

	assert.False(t, PageParams{}.IsSet())
	assert.True(t, PageParams{Size: intPtr(1)}.IsSet())
}

func TestSearchParams_ToFilter(t *testing.T) {
	empty := ""
	assert.True(t, SearchParams{Query: &empty}.ToFilter().IsEmpty())

	q := "lap"
	f := SearchParams{Query: &q}.ToFilter()
	require.NotNil(t, f.Query)
	assert.Equal(t, "lap", *f.Query)
}

func TestToPageResponse(t *testing.T) {
	page := domain.NewProductPage([]*domain.Product{{ID: "1"}}, domain.PageRequest{Number: 0, Size: 1}, 3)
	resp := ToPageResponse(page)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"id":"1","name":"","description":"","price":0,"created_at":"0001-01-01T00:00:00Z","updated_at":"0001-01-01T00:00:00Z"}],"pageNumber":0,"pageSize":1,"totalElements":3,"totalPages":3}`, string(raw))
}
