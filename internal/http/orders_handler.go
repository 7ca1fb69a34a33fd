package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/identity"
	"github.com/go-chi/chi/v5"
)

// OrderHistory is the read side of the order ledger.
type OrderHistory interface {
	ListFor(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, userID, orderID string) (domain.Order, error)
}

type OrdersHandler struct {
	orders   OrderHistory
	identity identity.Identity
	timeout  time.Duration
}

func NewOrdersHandler(orders OrderHistory, id identity.Identity, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:   orders,
		identity: id,
		timeout:  timeout,
	}
}

// OrderDTO adds the display status to a stored order.
type OrderDTO struct {
	domain.Order
	StatusTitle string `json:"status_title"`
}

type OrdersResponse struct {
	Orders []OrderDTO `json:"orders"`
}

func toOrderDTO(o domain.Order) OrderDTO {
	return OrderDTO{Order: o, StatusTitle: o.Status.Title()}
}

// GET /api/v1/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := h.identity.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "sign_in_required", "sign in to view your orders")
		return
	}

	orders, err := h.orders.ListFor(ctx, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	// records with an unknown status are not shown
	resp := &OrdersResponse{Orders: make([]OrderDTO, 0, len(orders))}
	for _, o := range orders {
		if o.Status.IsValid() {
			resp.Orders = append(resp.Orders, toOrderDTO(o))
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := h.identity.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "sign_in_required", "sign in to view your orders")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	o, err := h.orders.Get(ctx, userID, orderID)
	if err != nil {
		handleError(w, err)
		return
	}
	if !o.Status.IsValid() {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(o))
}
