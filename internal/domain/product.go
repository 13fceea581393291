package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product condition values.
const (
	ConditionNew         = "NEW"
	ConditionUsed        = "USED"
	ConditionRefurbished = "REFURBISHED"
)

// Product is a sellable item. Quantity is the stock still available for
// reservation; cart lines hold the rest.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Condition   string          `json:"condition"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductInput carries the mutable fields of a product.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=4000"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Condition   string          `json:"condition" validate:"required,oneof=NEW USED REFURBISHED"`
}

// ProductService covers catalog reads and the administrative mutations that
// publish domain events.
type ProductService interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	ApplyDiscount(ctx context.Context, productID uuid.UUID, discountType string) (*Product, error)
}
