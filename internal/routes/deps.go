package routes

import (
	"context"
	"net/http"

	"github.com/dukerupert/mercato/internal/handler/api"
)

// APIDeps contains dependencies for the JSON API routes
type APIDeps struct {
	CheckoutHandler     *api.CheckoutHandler
	CartHandler         *api.CartHandler
	OrderHandler        *api.OrderHandler
	ProductHandler      *api.ProductHandler
	NotificationHandler *api.NotificationHandler

	// CheckoutLimiter throttles POST /api/checkout per caller.
	CheckoutLimiter func(http.Handler) http.Handler
}

// OpsDeps contains dependencies for the operational endpoints
type OpsDeps struct {
	Metrics http.Handler

	// Ping reports database reachability for /health.
	Ping func(ctx context.Context) error
}
