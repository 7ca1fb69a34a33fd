package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Title is the capitalized status used for display.
func (s OrderStatus) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Order is an immutable record of a completed checkout. It carries the
// payment kind only, never the credentials used.
type Order struct {
	ID            string          `json:"id"`
	Items         []CartLine      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentKind     `json:"payment_method"`
	DeliveryInfo  DeliveryInfo    `json:"delivery_info"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        OrderStatus     `json:"status"`
}

// Subtotal is the item total without the handling fee.
func (o Order) Subtotal() decimal.Decimal {
	return Subtotal(o.Items)
}
