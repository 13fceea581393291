package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart belongs to exactly one user and is never deleted.
type Cart struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartLine is one (product, quantity) entry. UnitPrice and ProductName are
// joined from the product at read time.
type CartLine struct {
	ID          uuid.UUID       `json:"id"`
	CartID      uuid.UUID       `json:"cart_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// LineTotal returns UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AffectedLine is a cart line referencing a product, with its owning user.
type AffectedLine struct {
	CartID    uuid.UUID `json:"cart_id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CartSummary is the read model returned to callers.
type CartSummary struct {
	CartID    uuid.UUID       `json:"cart_id"`
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartService manages reservations: stock moves out of the product when a
// line is added and back when it is removed by the user.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartSummary, error)
	AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartSummary, error)
	UpdateLineQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartSummary, error)
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*CartSummary, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}
