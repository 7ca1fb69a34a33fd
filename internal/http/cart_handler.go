package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	catalog catalog.Catalog
	timeout time.Duration
}

func NewCartHandler(c catalog.Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		catalog: c,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	SessionID string            `json:"session_id"`
	Items     []domain.CartLine `json:"items"`
	Count     int               `json:"count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func cartResponse(s *session.Session) *CartResponse {
	return &CartResponse{
		SessionID: s.ID,
		Items:     s.Cart.Lines(),
		Count:     s.Cart.Count(),
		Subtotal:  s.Cart.Subtotal(),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartResponse(sessionFromContext(r.Context())))
}

// POST /api/v1/cart/items
// The unit price is taken from the catalog at the time of the call.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = domain.MinQuantity
	}

	p, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleError(w, err)
		return
	}

	s := sessionFromContext(r.Context())
	s.Cart.Add(domain.LineFromProduct(p), req.Quantity)

	respondJSON(w, http.StatusCreated, cartResponse(s))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := sessionFromContext(r.Context())
	if _, found := s.Cart.Line(productID); !found {
		respondError(w, http.StatusNotFound, "not_found", "product is not in the cart")
		return
	}
	s.Cart.SetQuantity(productID, req.Quantity)

	respondJSON(w, http.StatusOK, cartResponse(s))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	s := sessionFromContext(r.Context())
	s.Cart.Remove(productID)

	respondJSON(w, http.StatusOK, cartResponse(s))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Cart.Clear()

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
