// Package api implements the JSON endpoints of the retailer API.
package api

import (
	"net/http"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/handler"
)

// CheckoutHandler handles POST /api/checkout.
type CheckoutHandler struct {
	checkout domain.CheckoutService
}

func NewCheckoutHandler(checkout domain.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Checkout runs the whole pipeline for the caller's cart. A 201 is returned
// only once the order, payment and cart clear have committed.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	result, err := h.checkout.Checkout(r.Context(), domain.RequireUserID(r.Context()), req)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, result)
}
