package api

import (
	"net/http"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/handler"
	"github.com/google/uuid"
)

// CartHandler handles the /api/cart routes.
type CartHandler struct {
	carts domain.CartService
}

func NewCartHandler(carts domain.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	summary, err := h.carts.GetCart(r.Context(), domain.RequireUserID(r.Context()))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, summary)
}

// Add handles POST /api/cart/items
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.AddToCart(r.Context(), domain.RequireUserID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, summary)
}

// Update handles PATCH /api/cart/items/{productID}. Quantity 0 removes the line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := handler.PathUUID(r, "productID")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req updateItemRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.UpdateLineQuantity(r.Context(), domain.RequireUserID(r.Context()), productID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, summary)
}

// Remove handles DELETE /api/cart/items/{productID}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, err := handler.PathUUID(r, "productID")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.RemoveLine(r.Context(), domain.RequireUserID(r.Context()), productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, summary)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), domain.RequireUserID(r.Context())); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
