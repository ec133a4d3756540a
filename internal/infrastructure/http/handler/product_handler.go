package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/response"
	"github.com/shopspring/decimal"
)

const (
	invalidBodyMessage = "Invalid request format. Please check your JSON structure and data types."
	notFoundMessage    = "product not found"
)

// paramError reports a query parameter that does not parse as its type
type paramError struct {
	name     string
	expected string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("Invalid parameter type for '%s'. Expected type: %s", e.name, e.expected)
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products. Any pagination parameter switches the
// response to the paged envelope.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	pageParams, err := parsePageParams(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if pageParams.IsSet() {
		page, err := h.service.ListProductsPage(r.Context(), pageParams)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, page)
		return
	}

	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// SearchProducts handles GET /products/search
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	searchParams, err := parseSearchParams(query)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	pageParams, err := parsePageParams(query)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if pageParams.IsSet() {
		page, err := h.service.SearchProductsPage(r.Context(), searchParams, pageParams)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, page)
		return
	}

	products, err := h.service.SearchProducts(r.Context(), searchParams)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	response.NoContent(w)
}

// DeleteAllProducts handles DELETE /products
func (h *ProductHandler) DeleteAllProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAllProducts(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	response.NoContent(w)
}

func (h *ProductHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (*dto.ProductRequest, bool) {
	var req dto.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, invalidBodyMessage)
		return nil, false
	}

	if err := req.Validate(); err != nil {
		h.handleError(w, r, err)
		return nil, false
	}
	return &req, true
}

// handleError maps service and parsing errors to HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *dto.ValidationError
	var paramErr *paramError

	switch {
	case errors.As(err, &validationErr):
		response.Error(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &paramErr):
		response.Error(w, http.StatusBadRequest, paramErr.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		response.Error(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, domain.ErrProductAlreadyExists):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Unexpected error while handling request",
			slog.String("error", err.Error()),
		)
		response.InternalError(w)
	}
}

// parsePageParams reads page and size; pageSize is accepted as an alias for size
func parsePageParams(query url.Values) (dto.PageParams, error) {
	var params dto.PageParams

	page, err := intParam(query, "page")
	if err != nil {
		return params, err
	}
	params.Page = page

	size, err := intParam(query, "size")
	if err != nil {
		return params, err
	}
	if size == nil {
		if size, err = intParam(query, "pageSize"); err != nil {
			return params, err
		}
	}
	params.Size = size

	return params, nil
}

func parseSearchParams(query url.Values) (dto.SearchParams, error) {
	var params dto.SearchParams

	if query.Has("q") {
		q := query.Get("q")
		params.Query = &q
	}

	minPrice, err := decimalParam(query, "min_price")
	if err != nil {
		return params, err
	}
	params.MinPrice = minPrice

	maxPrice, err := decimalParam(query, "max_price")
	if err != nil {
		return params, err
	}
	params.MaxPrice = maxPrice

	return params, nil
}

// intParam returns nil when the parameter is absent or blank
func intParam(query url.Values, name string) (*int, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name: name, expected: "Integer"}
	}
	return &v, nil
}

func decimalParam(query url.Values, name string) (*decimal.Decimal, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &paramError{name: name, expected: "Decimal"}
	}
	return &v, nil
}
