package api

import (
	"context"
	"net/http"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
)

type fakeCheckoutService struct {
	checkoutFunc func(ctx context.Context, userID uuid.UUID, req domain.CheckoutRequest) (*domain.CheckoutResult, error)
	calls        int
}

func (f *fakeCheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	f.calls++
	return f.checkoutFunc(ctx, userID, req)
}

type fakeCartService struct {
	getCartFunc   func(ctx context.Context, userID uuid.UUID) (*domain.CartSummary, error)
	addFunc       func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartSummary, error)
	updateFunc    func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartSummary, error)
	removeFunc    func(ctx context.Context, userID, productID uuid.UUID) (*domain.CartSummary, error)
	clearCartFunc func(ctx context.Context, userID uuid.UUID) error
}

func (f *fakeCartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.CartSummary, error) {
	return f.getCartFunc(ctx, userID)
}

func (f *fakeCartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartSummary, error) {
	return f.addFunc(ctx, userID, productID, quantity)
}

func (f *fakeCartService) UpdateLineQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartSummary, error) {
	return f.updateFunc(ctx, userID, productID, quantity)
}

func (f *fakeCartService) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*domain.CartSummary, error) {
	return f.removeFunc(ctx, userID, productID)
}

func (f *fakeCartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return f.clearCartFunc(ctx, userID)
}

type fakeOrderService struct {
	listFunc func(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	getFunc  func(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
}

func (f *fakeOrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return f.listFunc(ctx, userID)
}

func (f *fakeOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	return f.getFunc(ctx, userID, orderID)
}

type fakeProductService struct {
	getFunc      func(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	createFunc   func(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	updateFunc   func(ctx context.Context, productID uuid.UUID, input domain.ProductInput) (*domain.Product, error)
	deleteFunc   func(ctx context.Context, productID uuid.UUID) error
	discountFunc func(ctx context.Context, productID uuid.UUID, discountType string) (*domain.Product, error)
}

func (f *fakeProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	return f.getFunc(ctx, productID)
}

func (f *fakeProductService) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	return f.createFunc(ctx, input)
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input domain.ProductInput) (*domain.Product, error) {
	return f.updateFunc(ctx, productID, input)
}

func (f *fakeProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return f.deleteFunc(ctx, productID)
}

func (f *fakeProductService) ApplyDiscount(ctx context.Context, productID uuid.UUID, discountType string) (*domain.Product, error) {
	return f.discountFunc(ctx, productID, discountType)
}

type fakeNotificationService struct {
	listFunc        func(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	unreadFunc      func(ctx context.Context, userID uuid.UUID) (int64, error)
	markReadFunc    func(ctx context.Context, userID, notificationID uuid.UUID) error
	markAllReadFunc func(ctx context.Context, userID uuid.UUID) (int64, error)
	deleteFunc      func(ctx context.Context, userID, notificationID uuid.UUID) error
}

func (f *fakeNotificationService) Notify(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	return &n, nil
}

func (f *fakeNotificationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	return f.listFunc(ctx, userID)
}

func (f *fakeNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.unreadFunc(ctx, userID)
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return f.markReadFunc(ctx, userID, notificationID)
}

func (f *fakeNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.markAllReadFunc(ctx, userID)
}

func (f *fakeNotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	return f.deleteFunc(ctx, userID, notificationID)
}

// asUser attaches an authenticated customer to req.
func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(domain.NewContextWithUser(req.Context(), &domain.User{ID: userID, Role: domain.RoleCustomer}))
}
