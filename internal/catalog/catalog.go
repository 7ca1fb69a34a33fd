package catalog

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

// AllFilter is the first entry of every filter list.
const AllFilter = "All"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnavailable     = errors.New("catalog unavailable")
)

// Catalog is the read-only product source behind the storefront.
type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
}

// UniqueCategories lists the distinct categories in catalog order, led by AllFilter.
func UniqueCategories(products []domain.Product) []string {
	return unique(products, func(p domain.Product) string { return p.Category })
}

// UniqueBrands lists the distinct brands in catalog order, led by AllFilter.
func UniqueBrands(products []domain.Product) []string {
	return unique(products, func(p domain.Product) string { return p.Brand })
}

func unique(products []domain.Product, field func(domain.Product) string) []string {
	out := []string{AllFilter}
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
