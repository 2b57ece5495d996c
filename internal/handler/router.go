package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/auth"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Security *Security
	Checkout *CheckoutHandler
	Products *ProductHandler
	Shipping *ShippingHandler
	Coupons  *CouponHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Users    *UserHandler
	Settings *SettingsHandler
}

// NewRouter mounts the API. Everything under /api requires an API key; admin
// screens additionally require the admin scope.
func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Security.Authenticate)

		r.Post("/auth/login", h.Users.Login)
		r.Post("/auth/verify-email", h.Users.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(auth.ScopeCatalog))

			r.Get("/products", h.Products.List)
			r.Get("/products/{productID}", h.Products.Get)
			r.Get("/shipping/options", h.Shipping.Options)
			r.Get("/coupons", h.Coupons.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(auth.ScopeCheckout))

			r.Get("/cart", h.Cart.Get)
			r.Post("/cart/items", h.Cart.AddItem)
			r.Delete("/cart/items", h.Cart.RemoveItem)

			r.Post("/checkout/summary", h.Checkout.Summary)
			r.Post("/checkout/order", h.Checkout.PlaceOrder)

			r.Get("/orders", h.Orders.ListMine)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireScope(auth.ScopeAdmin))

			r.Put("/products/{productID}", h.Products.Upsert)

			r.Post("/shipping/countries", h.Shipping.SaveCountry)
			r.Post("/shipping/states", h.Shipping.SaveState)
			r.Post("/shipping/cities", h.Shipping.SaveCity)

			r.Get("/orders/{orderID}", h.Orders.Get)
			r.Patch("/orders/{orderID}/status", h.Orders.SetStatus)

			r.Get("/users", h.Users.List)
			r.Post("/users", h.Users.Create)
			r.Patch("/users/{userID}/status", h.Users.SetStatus)
			r.Patch("/users/{userID}/role", h.Users.AssignRole)

			r.Get("/settings", h.Settings.List)
			r.Put("/settings/{key}", h.Settings.Update)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: "Not found",
		})
	})

	return r
}
