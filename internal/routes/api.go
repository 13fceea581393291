package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/dukerupert/mercato/internal/middleware"
	"github.com/dukerupert/mercato/internal/router"
)

// RegisterAPIRoutes registers the customer and admin JSON routes.
// Every /api route requires a caller identity; /api/admin also requires
// the admin role.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	customer := r.Route("/api", middleware.RequireUser)

	// Checkout
	checkoutMiddleware := []router.Middleware{}
	if deps.CheckoutLimiter != nil {
		checkoutMiddleware = append(checkoutMiddleware, deps.CheckoutLimiter)
	}
	customer.Post("/checkout", deps.CheckoutHandler.Checkout, checkoutMiddleware...)

	// Cart
	customer.Get("/cart", deps.CartHandler.View)
	customer.Delete("/cart", deps.CartHandler.Clear)
	customer.Post("/cart/items", deps.CartHandler.Add)
	customer.Patch("/cart/items/{productID}", deps.CartHandler.Update)
	customer.Delete("/cart/items/{productID}", deps.CartHandler.Remove)

	// Orders
	customer.Get("/orders", deps.OrderHandler.List)
	customer.Get("/orders/{orderID}", deps.OrderHandler.Get)

	// Notifications
	customer.Get("/notifications", deps.NotificationHandler.List)
	customer.Get("/notifications/stream", deps.NotificationHandler.Stream)
	customer.Get("/notifications/unread-count", deps.NotificationHandler.UnreadCount)
	customer.Post("/notifications/read-all", deps.NotificationHandler.MarkAllRead)
	customer.Post("/notifications/{id}/read", deps.NotificationHandler.MarkRead)
	customer.Delete("/notifications/{id}", deps.NotificationHandler.Delete)

	// Products
	customer.Get("/products/{id}", deps.ProductHandler.Get)

	admin := r.Route("/api/admin", middleware.RequireAdmin)
	admin.Post("/products", deps.ProductHandler.Create)
	admin.Put("/products/{id}", deps.ProductHandler.Update)
	admin.Delete("/products/{id}", deps.ProductHandler.Delete)
	admin.Post("/products/{id}/discount", deps.ProductHandler.Discount)
}

// RegisterOpsRoutes registers /health, /metrics and a catch-all /api/ OPTIONS
// route so CORS preflights reach the middleware chain. None requires a
// caller identity.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Handle(http.MethodOptions, "/api/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	if deps.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				middleware.GetLogger(req.Context()).Error("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("UNAVAILABLE"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
