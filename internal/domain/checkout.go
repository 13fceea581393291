package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingDetails is the address payload submitted with a checkout.
type ShippingDetails struct {
	FullName     string `json:"full_name" validate:"required,max=200"`
	AddressLine1 string `json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `json:"address_line2" validate:"max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,len=2"`
	Phone        string `json:"phone" validate:"max=40"`
}

// CheckoutRequest is the input to a checkout attempt.
type CheckoutRequest struct {
	PaymentMethod string          `json:"payment_method" validate:"required"`
	CouponCode    string          `json:"coupon_code"`
	Shipping      ShippingDetails `json:"shipping" validate:"required"`
}

// CheckoutResult is returned only for a fully committed checkout.
type CheckoutResult struct {
	OrderID       uuid.UUID       `json:"order_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus OrderStatus     `json:"payment_status"`
	TransactionID string          `json:"transaction_id"`
}

// CheckoutService turns a user's cart into a paid, confirmed order.
type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error)
}
