package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as served by the remote product API.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
}

var hundred = decimal.NewFromInt(100)

// OriginalPrice reconstructs the pre-discount price from the discount
// percentage. Outside (0, 100) the price is returned unchanged.
func (p Product) OriginalPrice() decimal.Decimal {
	if !p.Discount.IsPositive() || p.Discount.GreaterThanOrEqual(hundred) {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(p.Discount.Div(hundred))
	return p.Price.Div(factor).Round(2)
}

// LineFromProduct snapshots p into a cart line.
func LineFromProduct(p Product) CartLine {
	return CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Image:     p.Image,
		Quantity:  MinQuantity,
	}
}
