package grpc

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/ledger"
	"github.com/fjod/storefront/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type OrderHistory interface {
	ListFor(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, userID, orderID string) (domain.Order, error)
}

type SessionLookup interface {
	Get(id string) (*session.Session, error)
}

type OrdersHandler struct {
	orders   OrderHistory
	sessions SessionLookup
}

func NewOrdersHandler(orders OrderHistory, sessions SessionLookup) *OrdersHandler {
	return &OrdersHandler{orders: orders, sessions: sessions}
}

// ListOrders and GetOrder serve the caller identified by AuthInterceptor.
func (h *OrdersHandler) ListOrders(ctx context.Context, _ *ListOrdersRequest) (*ListOrdersResponse, error) {
	userID, ok := identity.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "sign in required")
	}

	orders, err := h.orders.ListFor(ctx, userID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list orders: %v", err)
	}

	return &ListOrdersResponse{Orders: orders}, nil
}

func (h *OrdersHandler) GetOrder(ctx context.Context, req *GetOrderRequest) (*GetOrderResponse, error) {
	userID, ok := identity.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "sign in required")
	}
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	o, err := h.orders.Get(ctx, userID, req.OrderID)
	if err != nil {
		if errors.Is(err, ledger.ErrOrderNotFound) {
			return nil, status.Errorf(codes.NotFound, "order not found: %s", req.OrderID)
		}
		return nil, status.Errorf(codes.Internal, "failed to get order: %v", err)
	}

	return &GetOrderResponse{Order: o}, nil
}

func (h *OrdersHandler) GetCheckoutState(_ context.Context, req *GetCheckoutStateRequest) (*GetCheckoutStateResponse, error) {
	if req.SessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}

	s, err := h.sessions.Get(req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, status.Errorf(codes.NotFound, "session not found: %s", req.SessionID)
		}
		return nil, status.Errorf(codes.Internal, "failed to get session: %v", err)
	}

	resp := &GetCheckoutStateResponse{
		SessionID: s.ID,
		Status:    s.Checkout.State().String(),
	}
	if lastErr := s.Checkout.LastError(); lastErr != nil {
		resp.Error = lastErr.Error()
	}
	return resp, nil
}
