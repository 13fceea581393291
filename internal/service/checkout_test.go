package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/billing"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/pricing"
	"github.com/dukerupert/mercato/internal/shipping"
	"github.com/dukerupert/mercato/internal/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	store   *fakeStore
	carts   domain.CartService
	gateway *billing.MockGateway
	pusher  *recordingPusher
	svc     domain.CheckoutService
	userID  uuid.UUID
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	userID := uuid.New()
	store := newFakeStore()
	gateway := billing.NewMockGateway("stripe", "stripe", "credit_card")
	pusher := newRecordingPusher(userID)
	pricer := pricing.NewCheckoutPricer(
		decimal.RequireFromString("10.00"),
		tax.NewPercentageCalculator(decimal.RequireFromString("0.21")),
		shipping.NewStandardFlatRate(decimal.RequireFromString("5.99")),
	)

	svc, err := NewCheckoutService(store, pricer, billing.NewResolver(gateway), address.NewBasicValidator(), pusher, testLogger())
	require.NoError(t, err)

	return &checkoutFixture{
		store:   store,
		carts:   NewCartService(store, testLogger()),
		gateway: gateway,
		pusher:  pusher,
		svc:     svc,
		userID:  userID,
	}
}

func validCheckoutRequest() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		PaymentMethod: "Credit_Card",
		CouponCode:    "SAVE10",
		Shipping: domain.ShippingDetails{
			FullName:     "Ada Lovelace",
			AddressLine1: "12 Analytical Way",
			City:         "Springfield",
			State:        "il",
			PostalCode:   "62701",
			Country:      "us",
		},
	}
}

// assertNoCheckoutWrites checks that nothing a checkout persists exists.
func assertNoCheckoutWrites(t *testing.T, store *fakeStore) {
	t.Helper()
	snap := store.snapshot()
	assert.Empty(t, snap.addresses, "addresses")
	assert.Empty(t, snap.orders, "orders")
	assert.Empty(t, snap.orderLines, "order lines")
	assert.Empty(t, snap.payments, "payments")
	assert.Empty(t, snap.notifications, "notifications")
}

func TestNewCheckoutService_RequiresCollaborators(t *testing.T) {
	_, err := NewCheckoutService(newFakeStore(), nil, billing.NewResolver(), address.NewBasicValidator(), newRecordingPusher(), testLogger())
	assert.Error(t, err)
}

func TestCheckout_Success(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.store.seedProduct("Desk", "50.00", 5)
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 2)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, f.userID, validCheckoutRequest())
	require.NoError(t, err)

	// 100.00 - 10.00 coupon = 90.00, + 18.90 tax, + 5.99 shipping
	assert.Equal(t, "114.89", result.TotalAmount.StringFixed(2))
	assert.Equal(t, domain.OrderStatusConfirmed, result.PaymentStatus)
	assert.Equal(t, "mock_"+result.OrderID.String(), result.TransactionID)
	assert.Equal(t, 1, f.gateway.Calls())

	snap := f.store.snapshot()
	order, ok := snap.orders[result.OrderID]
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, f.userID, order.UserID)
	assert.Equal(t, "114.89", order.TotalAmount.StringFixed(2))

	require.Len(t, snap.orderLines, 1)
	assert.Equal(t, "Desk", snap.orderLines[0].ProductName)
	assert.Equal(t, 2, snap.orderLines[0].Quantity)
	assert.Equal(t, "50.00", snap.orderLines[0].Price.StringFixed(2))

	require.Len(t, snap.payments, 1)
	for _, pay := range snap.payments {
		assert.Equal(t, result.OrderID, pay.OrderID)
		assert.Equal(t, "stripe", pay.Gateway)
		assert.Equal(t, "credit_card", pay.Method)
		assert.Equal(t, result.TransactionID, pay.TransactionID)
	}

	addr, ok := snap.addresses[order.ShippingAddressID]
	require.True(t, ok)
	assert.Equal(t, "US", addr.Country)
	assert.Equal(t, "IL", addr.State)
}

func TestCheckout_ClearsCartWithoutRestock(t *testing.T) {
	f := newCheckoutFixture(t)
	a := f.store.seedProduct("Desk", "50.00", 5)
	b := f.store.seedProduct("Chair", "20.00", 4)
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, f.userID, a.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, f.userID, b.ID, 4)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.userID, validCheckoutRequest())
	require.NoError(t, err)

	assert.Empty(t, f.store.cartLinesFor(f.userID))
	assert.Equal(t, 3, f.store.product(a.ID).Quantity, "purchased stock must not be returned")
	assert.Equal(t, 0, f.store.product(b.ID).Quantity, "purchased stock must not be returned")
}

func TestCheckout_NotifiesBuyer(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.store.seedProduct("Desk", "50.00", 5)
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 1)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, f.userID, validCheckoutRequest())
	require.NoError(t, err)

	snap := f.store.snapshot()
	require.Len(t, snap.notifications, 1)
	n := snap.notifications[0]
	assert.Equal(t, domain.NotificationOrderConfirmed, n.Type)
	assert.Equal(t, f.userID, n.UserID)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, result.OrderID, *n.RelatedID)

	pushed := f.pusher.delivered()
	require.Len(t, pushed, 1)
	assert.Equal(t, n.ID, pushed[0].ID)
}

func TestCheckout_OfflineBuyerStillGetsStoredNotification(t *testing.T) {
	f := newCheckoutFixture(t)
	f.pusher = newRecordingPusher()
	pricer := pricing.NewCheckoutPricer(decimal.Zero, tax.NewNoTaxCalculator(), shipping.NewStandardFlatRate(decimal.Zero))
	svc, err := NewCheckoutService(f.store, pricer, billing.NewResolver(f.gateway), address.NewBasicValidator(), f.pusher, testLogger())
	require.NoError(t, err)

	p := f.store.seedProduct("Desk", "50.00", 5)
	ctx := context.Background()
	_, err = f.carts.AddToCart(ctx, f.userID, p.ID, 1)
	require.NoError(t, err)

	result, err := svc.Checkout(ctx, f.userID, validCheckoutRequest())
	require.NoError(t, err)

	assert.Equal(t, "50.00", result.TotalAmount.StringFixed(2))
	assert.Empty(t, f.pusher.delivered())
	assert.Len(t, f.store.snapshot().notifications, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	t.Run("no cart at all", func(t *testing.T) {
		f := newCheckoutFixture(t)

		_, err := f.svc.Checkout(context.Background(), f.userID, validCheckoutRequest())

		assert.ErrorIs(t, err, domain.ErrCartEmpty)
		assert.Equal(t, domain.ECARTEMPTY, domain.ErrorCode(err))
		assert.Zero(t, f.gateway.Calls())
		assertNoCheckoutWrites(t, f.store)
	})

	t.Run("cart with no lines", func(t *testing.T) {
		f := newCheckoutFixture(t)
		p := f.store.seedProduct("Desk", "50.00", 5)
		ctx := context.Background()
		_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 1)
		require.NoError(t, err)
		_, err = f.carts.RemoveLine(ctx, f.userID, p.ID)
		require.NoError(t, err)

		_, err = f.svc.Checkout(ctx, f.userID, validCheckoutRequest())

		assert.ErrorIs(t, err, domain.ErrCartEmpty)
		assert.Zero(t, f.gateway.Calls())
		assertNoCheckoutWrites(t, f.store)
	})
}

func TestCheckout_PaymentFailureRollsBack(t *testing.T) {
	tests := []struct {
		name    string
		outcome func(ctx context.Context, req billing.PaymentRequest) (*billing.PaymentResult, error)
	}{
		{
			name: "declined",
			outcome: func(ctx context.Context, req billing.PaymentRequest) (*billing.PaymentResult, error) {
				return &billing.PaymentResult{Success: false, Message: "card declined"}, nil
			},
		},
		{
			name: "gateway error",
			outcome: func(ctx context.Context, req billing.PaymentRequest) (*billing.PaymentResult, error) {
				return nil, errors.New("connection reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t)
			f.gateway.ProcessPaymentFunc = tt.outcome
			p := f.store.seedProduct("Desk", "50.00", 5)
			ctx := context.Background()
			_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 2)
			require.NoError(t, err)

			_, err = f.svc.Checkout(ctx, f.userID, validCheckoutRequest())

			assert.ErrorIs(t, err, domain.ErrPaymentFailed)
			assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))
			assert.Equal(t, 1, f.gateway.Calls(), "gateway must not be retried")
			assertNoCheckoutWrites(t, f.store)
			assert.Len(t, f.store.cartLinesFor(f.userID), 1, "cart must be untouched")
			assert.Equal(t, 3, f.store.product(p.ID).Quantity)
			assert.Empty(t, f.pusher.delivered())
		})
	}
}

func TestCheckout_UnsupportedPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.store.seedProduct("Desk", "50.00", 5)
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 1)
	require.NoError(t, err)

	req := validCheckoutRequest()
	req.PaymentMethod = "bitcoin"
	commits, rollbacks := f.store.commits, f.store.rollbacks
	_, err = f.svc.Checkout(ctx, f.userID, req)

	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Zero(t, f.gateway.Calls())
	assert.Equal(t, commits, f.store.commits, "no transaction should commit")
	assert.Equal(t, rollbacks, f.store.rollbacks, "no transaction should open")
	assertNoCheckoutWrites(t, f.store)
	assert.Len(t, f.store.cartLinesFor(f.userID), 1)
}

func TestCheckout_UnsupportedPaymentMethodWithEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	req := validCheckoutRequest()
	req.PaymentMethod = "wire_transfer"

	_, err := f.svc.Checkout(context.Background(), f.userID, req)

	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Zero(t, f.store.commits)
	assert.Zero(t, f.store.rollbacks)
}

func TestCheckout_InvalidAddress(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.store.seedProduct("Desk", "50.00", 5)
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 1)
	require.NoError(t, err)

	req := validCheckoutRequest()
	req.Shipping.PostalCode = "ABCDE"
	_, err = f.svc.Checkout(ctx, f.userID, req)

	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "PostalCode")
	assert.Zero(t, f.gateway.Calls())
	assertNoCheckoutWrites(t, f.store)
}

func TestCheckout_FailureAfterPaymentRollsBackEverything(t *testing.T) {
	for _, op := range []string{"CreateOrder", "CreateOrderLine", "CreatePayment", "DeleteCartLines", "CreateNotification"} {
		t.Run(op, func(t *testing.T) {
			f := newCheckoutFixture(t)
			p := f.store.seedProduct("Desk", "50.00", 5)
			ctx := context.Background()
			_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 2)
			require.NoError(t, err)
			f.store.fail(op, nil)

			_, err = f.svc.Checkout(ctx, f.userID, validCheckoutRequest())

			require.ErrorIs(t, err, errInjected)
			assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
			assert.Equal(t, 1, f.gateway.Calls())
			assertNoCheckoutWrites(t, f.store)
			assert.Len(t, f.store.cartLinesFor(f.userID), 1)
			assert.Empty(t, f.pusher.delivered())
		})
	}
}

func TestCheckout_UsesOrderIDAsIdempotencyKey(t *testing.T) {
	f := newCheckoutFixture(t)
	var seen billing.PaymentRequest
	f.gateway.ProcessPaymentFunc = func(ctx context.Context, req billing.PaymentRequest) (*billing.PaymentResult, error) {
		seen = req
		return &billing.PaymentResult{Success: true, TransactionID: "txn_1"}, nil
	}
	p := f.store.seedProduct("Desk", "50.00", 5)
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 1)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, f.userID, validCheckoutRequest())
	require.NoError(t, err)

	assert.Equal(t, result.OrderID.String(), seen.IdempotencyKey)
	assert.Equal(t, result.OrderID, seen.OrderID)
	assert.True(t, result.TotalAmount.Equal(seen.Amount))
	assert.Equal(t, "txn_1", result.TransactionID)
}

func TestCheckout_ConcurrentSameUser(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.store.seedProduct("Desk", "50.00", 5)
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, f.userID, p.ID, 2)
	require.NoError(t, err)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(ctx, f.userID, validCheckoutRequest())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrCartEmpty)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.gateway.Calls())
	assert.Len(t, f.store.snapshot().orders, 1)
}

func TestCheckout_DifferentUsersAreIndependent(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.store.seedProduct("Desk", "50.00", 10)
	ctx := context.Background()

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, u := range users {
		_, err := f.carts.AddToCart(ctx, u, p.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(ctx, u, validCheckoutRequest())
		}(i, u)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, f.store.snapshot().orders, len(users))
	assert.Equal(t, 7, f.store.product(p.ID).Quantity)
}

func TestCheckoutState_String(t *testing.T) {
	assert.Equal(t, "CART_LOADED", stateCartLoaded.String())
	assert.Equal(t, "NOTIFIED", stateNotified.String())
	assert.Equal(t, "checkoutState(99)", checkoutState(99).String())
}
