package service

import (
	"github.com/dukerupert/mercato/internal/domain"
)

// Lookup errors - use domain.ENOTFOUND
var (
	ErrProductNotFound      = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrCartNotFound         = domain.Errorf(domain.ENOTFOUND, "", "Cart not found")
	ErrCartLineNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Product is not in the cart")
	ErrOrderNotFound        = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrNotificationNotFound = domain.Errorf(domain.ENOTFOUND, "", "Notification not found")
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidQuantity  = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrNegativeQuantity = domain.Errorf(domain.EINVALID, "", "Quantity cannot be negative")
	ErrPriceOutOfRange  = domain.Errorf(domain.EINVALID, "", "Price must be greater than 0 and within the price ceiling")
	ErrDiscountToZero   = domain.Errorf(domain.EINVALID, "", "Discount would reduce the price to zero")
	ErrMissingName      = domain.Errorf(domain.EINVALID, "", "Product name is required")
)
