package repository

import (
	"context"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Querier is every query the services use. Single-row lookups return
// ErrNoRows when nothing matches.
type Querier interface {
	// users
	EnsureUser(ctx context.Context, userID uuid.UUID) error

	// products
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (domain.Product, error)
	AdjustProductStock(ctx context.Context, id uuid.UUID, delta int) error
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)

	// carts
	GetCartByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	GetCartByUserForUpdate(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	CreateCart(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	ListCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error)
	GetCartLine(ctx context.Context, cartID, productID uuid.UUID) (domain.CartLine, error)
	UpsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error)
	DeleteCartLine(ctx context.Context, cartID, productID uuid.UUID) (int64, error)
	DeleteCartLines(ctx context.Context, cartID uuid.UUID) (int64, error)
	ListCartLinesByProduct(ctx context.Context, productID uuid.UUID) ([]domain.AffectedLine, error)
	DeleteCartLinesByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// addresses
	CreateAddress(ctx context.Context, a domain.Address) (domain.Address, error)

	// orders and payments
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	CreateOrderLine(ctx context.Context, l domain.OrderLine) (domain.OrderLine, error)
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	CreatePayment(ctx context.Context, p domain.Payment) (domain.Payment, error)

	// notifications
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, userID, id uuid.UUID) (int64, error)
}
