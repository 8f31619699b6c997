// Package api is the storefront's HTTP surface.
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mpss/storefront/internal/auth"
	"github.com/mpss/storefront/internal/cart"
	"github.com/mpss/storefront/internal/models"
	"github.com/mpss/storefront/internal/photos"
	"github.com/mpss/storefront/internal/store"
	"go.uber.org/zap"
)

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	DB       *sql.DB
	Carts    *cart.Store
	Photos   *photos.Service
	Verifier *auth.Verifier
	Logger   *zap.Logger
	// PhotoQuality is the JPEG quality used when the request names none.
	PhotoQuality int
	// StrictTransitions rejects status changes outside the adjacency table.
	StrictTransitions bool
	// Checks are run by /healthz, keyed by service name.
	Checks map[string]HealthCheck
}

// Handler serves every route. findProduct is the catalog lookup used by
// the cart and findOrder loads a single order; both read from DB unless
// replaced.
type Handler struct {
	db           *sql.DB
	carts        *cart.Store
	photos       *photos.Service
	verifier     *auth.Verifier
	logger       *zap.Logger
	photoQuality int
	strict       bool
	checks       map[string]HealthCheck
	findProduct  func(ctx context.Context, id int64) (*models.Product, error)
	findOrder    func(ctx context.Context, id int64) (*models.Order, error)
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		db:           d.DB,
		carts:        d.Carts,
		photos:       d.Photos,
		verifier:     d.Verifier,
		logger:       d.Logger,
		photoQuality: d.PhotoQuality,
		strict:       d.StrictTransitions,
		checks:       d.Checks,
	}
	h.findProduct = func(ctx context.Context, id int64) (*models.Product, error) {
		return store.GetProduct(ctx, h.db, id)
	}
	h.findOrder = func(ctx context.Context, id int64) (*models.Order, error) {
		return store.GetOrder(ctx, h.db, id)
	}
	return h
}

func NewRouter(d Deps) http.Handler {
	return NewHandler(d).Routes()
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/photos/{filename}", h.ServePhoto)

	r.Route("/api", func(r chi.Router) {
		r.Route("/photos", func(r chi.Router) {
			r.Get("/", h.ListPhotos)
			r.Get("/random", h.RandomPhoto)
			r.Get("/{filename}", h.GetPhoto)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/{id}", h.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(h.authenticate)
				r.Post("/{id}/reviews", h.AddReview)
				r.With(requireAdmin).Post("/", h.CreateProduct)
				r.With(requireAdmin).Put("/{id}/stock", h.UpdateStock)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Post("/", h.CreateOrder)
			r.Get("/", h.ListOrders)
			r.Get("/feed", h.OrderFeed)
			r.With(requireAdmin).Get("/admin/all", h.ListAllOrders)
			r.Get("/{id}", h.GetOrder)
			r.With(requireAdmin).Put("/{id}/status", h.UpdateOrderStatus)
		})

		r.Route("/customization", func(r chi.Router) {
			r.Get("/options", h.CustomizationOptions)
			r.Post("/calculate-price", h.CalculatePrice)

			r.Group(func(r chi.Router) {
				r.Use(h.authenticate)
				r.Post("/save-design", h.SaveDesign)
				r.Get("/designs", h.ListDesigns)
				r.Post("/order", h.CreateCustomOrder)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{productId}", h.UpdateCartItem)
			r.Delete("/items/{productId}", h.RemoveCartItem)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Get("/wishlist", h.GetWishlist)
			r.Post("/wishlist/{productId}", h.AddToWishlist)
			r.Delete("/wishlist/{productId}", h.RemoveFromWishlist)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/admin/all", h.ListUsers)
				r.Get("/admin/{id}", h.GetUser)
				r.Put("/admin/{id}", h.UpdateUser)
				r.Delete("/admin/{id}", h.DeleteUser)
			})
		})
	})

	return r
}
