package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Cart     *CartHandler
	Products *ProductHandler
	Checkout *CheckoutHandler
	Vendor   *VendorHandler
	Admin    *AdminHandler
}

type RouterOptions struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	SessionTTL         time.Duration
	SecureCookies      bool
}

func NewRouter(h Handlers, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.RequestSize(opts.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(opts.SessionTTL, opts.SecureCookies))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			r.Post("/actions", h.Cart.Dispatch)
		})

		r.Get("/products", h.Products.ListProducts)
		r.Post("/checkout", h.Checkout.Checkout)

		r.Route("/vendor", func(r chi.Router) {
			r.Post("/register", h.Vendor.Register)
			r.Post("/login", h.Vendor.Login)
			r.Post("/logout", h.Vendor.Logout)
			r.Get("/me", h.Vendor.Me)
			r.Get("/products", h.Vendor.ListProducts)
			r.Post("/products", h.Vendor.AddProduct)
			r.Put("/products/{id}", h.Vendor.EditProduct)
			r.Delete("/products/{id}", h.Vendor.DeleteProduct)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.Login)
			r.Post("/logout", h.Admin.Logout)
			r.Get("/vendors", h.Admin.ListVendors)
			r.Patch("/vendors/{id}", h.Admin.UpdateVendorStatus)
			r.Get("/products", h.Admin.ListProducts)
			r.Delete("/products/{id}", h.Admin.DeleteProduct)
			r.Get("/orders", h.Admin.ListOrders)
		})
	})

	return r
}
