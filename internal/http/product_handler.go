package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalog catalog.Catalog
	timeout time.Duration
}

func NewProductHandler(c catalog.Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type ProductResponse struct {
	domain.Product
	OriginalPrice string `json:"original_price"`
}

type FiltersResponse struct {
	Values []string `json:"values"`
}

// GET /api/v1/products?category=&brand=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var products []domain.Product
	var err error
	category := r.URL.Query().Get("category")
	if category != "" && category != catalog.AllFilter {
		products, err = h.catalog.ListByCategory(ctx, category)
	} else {
		products, err = h.catalog.ListProducts(ctx)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	if brand := r.URL.Query().Get("brand"); brand != "" && brand != catalog.AllFilter {
		filtered := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if strings.EqualFold(p.Brand, brand) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	p, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &ProductResponse{
		Product:       p,
		OriginalPrice: p.OriginalPrice().StringFixed(2),
	})
}

// GET /api/v1/products/search?q=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing_query", "q is required")
		return
	}

	products, err := h.catalog.Search(ctx, query)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.filters(w, r, catalog.UniqueCategories)
}

// GET /api/v1/products/brands
func (h *ProductHandler) Brands(w http.ResponseWriter, r *http.Request) {
	h.filters(w, r, catalog.UniqueBrands)
}

func (h *ProductHandler) filters(w http.ResponseWriter, r *http.Request, extract func([]domain.Product) []string) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &FiltersResponse{Values: extract(products)})
}
