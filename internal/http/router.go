package http

import (
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/geo"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Catalog  catalog.Catalog
	Sessions *session.Manager
	Orders   OrderHistory
	Identity identity.Identity
	// Auth puts the user on the request context. Optional.
	Auth func(http.Handler) http.Handler
	// Locator is optional; without it /location answers 503.
	Locator geo.Locator

	RequestTimeout time.Duration
	MaxBodyBytes   int64
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) chi.Router {
	productHandler := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.Catalog, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.Identity, cfg.Logger)
	ordersHandler := NewOrdersHandler(cfg.Orders, cfg.Identity, cfg.RequestTimeout)
	locationHandler := NewLocationHandler(cfg.Locator, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
	}
	r.Use(middleware.Compress(5))
	if cfg.Auth != nil {
		r.Use(cfg.Auth)
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/categories", productHandler.Categories)
			r.Get("/brands", productHandler.Brands)
			r.Get("/{product_id}", productHandler.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Sessions))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.State)
				r.Post("/", checkoutHandler.Submit)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.List)
			r.Get("/{order_id}", ordersHandler.Get)
		})

		r.Get("/location", locationHandler.Locate)
	})

	return r
}
