package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/billing"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/pricing"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const checkoutCurrency = "usd"

// checkoutState is the last step a checkout completed.
type checkoutState int

const (
	stateStarted checkoutState = iota
	stateCartLoaded
	stateAddressCreated
	statePriced
	statePaid
	stateOrderPersisted
	stateCartCleared
	stateNotified
)

func (s checkoutState) String() string {
	switch s {
	case stateStarted:
		return "STARTED"
	case stateCartLoaded:
		return "CART_LOADED"
	case stateAddressCreated:
		return "ADDRESS_CREATED"
	case statePriced:
		return "PRICED"
	case statePaid:
		return "PAID"
	case stateOrderPersisted:
		return "ORDER_PERSISTED"
	case stateCartCleared:
		return "CART_CLEARED"
	case stateNotified:
		return "NOTIFIED"
	default:
		return fmt.Sprintf("checkoutState(%d)", int(s))
	}
}

type checkoutService struct {
	store     repository.Store
	pricer    *pricing.CheckoutPricer
	gateways  *billing.Resolver
	addresses address.Validator
	pusher    domain.NotificationPusher
	logger    *slog.Logger
}

var _ domain.CheckoutService = (*checkoutService)(nil)

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(
	store repository.Store,
	pricer *pricing.CheckoutPricer,
	gateways *billing.Resolver,
	addresses address.Validator,
	pusher domain.NotificationPusher,
	logger *slog.Logger,
) (domain.CheckoutService, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if pricer == nil {
		return nil, errors.New("pricer is required")
	}
	if gateways == nil {
		return nil, errors.New("gateway resolver is required")
	}
	if addresses == nil {
		return nil, errors.New("address validator is required")
	}
	if pusher == nil {
		return nil, errors.New("notification pusher is required")
	}

	return &checkoutService{
		store:     store,
		pricer:    pricer,
		gateways:  gateways,
		addresses: addresses,
		pusher:    pusher,
		logger:    logger,
	}, nil
}

// checkoutRun carries one attempt through its states.
type checkoutRun struct {
	userID uuid.UUID
	req    domain.CheckoutRequest
	logger *slog.Logger

	state        checkoutState
	cart         domain.Cart
	lines        []domain.CartLine
	address      domain.Address
	total        decimal.Decimal
	order        domain.Order
	gateway      billing.Gateway
	payment      *billing.PaymentResult
	notification domain.Notification
}

func (r *checkoutRun) advance(s checkoutState) {
	r.state = s
	r.logger.Debug("checkout state", "state", s.String())
}

// Checkout turns the user's cart into a confirmed, paid order. Every write
// happens in one transaction; the gateway is called at most once and any
// failure rolls everything back. The confirmation is pushed after commit.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	run := &checkoutRun{
		userID: userID,
		req:    req,
		logger: s.logger.With("user_id", userID),
	}
	if telemetry.Business != nil {
		telemetry.Business.CheckoutStarted.Inc()
	}

	gateway, err := s.gateways.Resolve(req.PaymentMethod)
	if err != nil {
		s.fail(run, err)
		return nil, err
	}
	run.gateway = gateway

	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		steps := []func(context.Context, repository.Querier, *checkoutRun) error{
			s.loadCart,
			s.createAddress,
			s.price,
			s.buildOrder,
			s.pay,
			s.persistOrder,
			s.clearCart,
			s.recordNotification,
		}
		for _, step := range steps {
			if err := step(ctx, q, run); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.fail(run, err)
		return nil, err
	}

	pushed := s.pusher.Send(userID, run.notification)
	run.advance(stateNotified)

	if telemetry.Business != nil {
		telemetry.Business.CheckoutCompleted.Inc()
		total, _ := run.total.Float64()
		telemetry.Business.OrderValue.Observe(total)
	}
	run.logger.Info("checkout completed",
		"order_id", run.order.ID,
		"total", run.total.StringFixed(2),
		"gateway", run.gateway.Name(),
		"pushed", pushed,
	)

	return &domain.CheckoutResult{
		OrderID:       run.order.ID,
		TotalAmount:   run.total,
		PaymentStatus: run.order.Status,
		TransactionID: run.payment.TransactionID,
	}, nil
}

func (s *checkoutService) fail(run *checkoutRun, err error) {
	code := domain.ErrorCode(err)
	if telemetry.Business != nil {
		telemetry.Business.CheckoutFailed.WithLabelValues(code, run.state.String()).Inc()
	}

	level := slog.LevelWarn
	if code == domain.EINTERNAL {
		level = slog.LevelError
		telemetry.CaptureError(err, map[string]any{
			"user_id": run.userID.String(),
			"state":   run.state.String(),
		})
	}
	run.logger.Log(context.Background(), level, "checkout failed",
		"state", run.state.String(),
		"code", code,
		"error", err,
	)
}

// loadCart locks the cart row so a concurrent checkout for the same user
// waits and then finds no lines.
func (s *checkoutService) loadCart(ctx context.Context, q repository.Querier, run *checkoutRun) error {
	cart, err := q.GetCartByUserForUpdate(ctx, run.userID)
	if errors.Is(err, repository.ErrNoRows) {
		return domain.ErrCartEmpty
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	lines, err := q.ListCartLines(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to list cart lines: %w", err)
	}
	if len(lines) == 0 {
		return domain.ErrCartEmpty
	}

	run.cart, run.lines = cart, lines
	run.advance(stateCartLoaded)
	return nil
}

func (s *checkoutService) createAddress(ctx context.Context, q repository.Querier, run *checkoutRun) error {
	sh := run.req.Shipping
	result, err := s.addresses.Validate(ctx, address.Address{
		FullName:     sh.FullName,
		AddressLine1: sh.AddressLine1,
		AddressLine2: sh.AddressLine2,
		City:         sh.City,
		State:        sh.State,
		PostalCode:   sh.PostalCode,
		Country:      sh.Country,
		Phone:        sh.Phone,
	})
	if err != nil {
		return fmt.Errorf("failed to validate address: %w", err)
	}
	if !result.IsValid {
		return domain.Invalid("checkout.address", "Invalid shipping address: "+result.FirstError())
	}

	n := result.NormalizedAddress
	addr, err := q.CreateAddress(ctx, domain.Address{
		ID:           uuid.New(),
		UserID:       run.userID,
		FullName:     n.FullName,
		AddressLine1: n.AddressLine1,
		AddressLine2: n.AddressLine2,
		City:         n.City,
		State:        n.State,
		PostalCode:   n.PostalCode,
		Country:      n.Country,
		Phone:        n.Phone,
	})
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	run.address = addr
	run.advance(stateAddressCreated)
	return nil
}

func (s *checkoutService) price(_ context.Context, _ repository.Querier, run *checkoutRun) error {
	lines := make([]pricing.Line, len(run.lines))
	for i, l := range run.lines {
		lines[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}

	run.total = s.pricer.Total(lines, run.req.CouponCode)
	run.advance(statePriced)
	return nil
}

// buildOrder snapshots the cart lines into an unsaved PENDING order.
func (s *checkoutService) buildOrder(_ context.Context, _ repository.Querier, run *checkoutRun) error {
	order := domain.Order{
		ID:                uuid.New(),
		UserID:            run.userID,
		Status:            domain.OrderStatusPending,
		TotalAmount:       run.total,
		ShippingAddressID: run.address.ID,
		Lines:             make([]domain.OrderLine, len(run.lines)),
	}
	for i, l := range run.lines {
		order.Lines[i] = domain.OrderLine{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		}
	}
	run.order = order
	return nil
}

func (s *checkoutService) pay(ctx context.Context, _ repository.Querier, run *checkoutRun) error {
	result, err := run.gateway.ProcessPayment(ctx, billing.PaymentRequest{
		OrderID:        run.order.ID,
		UserID:         run.userID,
		Amount:         run.total,
		Currency:       checkoutCurrency,
		Method:         billing.NormalizeMethod(run.req.PaymentMethod),
		IdempotencyKey: run.order.ID.String(),
	})

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case !result.Success:
		outcome = "declined"
	}
	if telemetry.Business != nil {
		telemetry.Business.PaymentAttempts.WithLabelValues(gateway.Name(), outcome).Inc()
	}

	if err != nil {
		return fmt.Errorf("%w: gateway %s: %v", domain.ErrPaymentFailed, gateway.Name(), err)
	}
	if !result.Success {
		return fmt.Errorf("%w: gateway %s: %s", domain.ErrPaymentFailed, gateway.Name(), result.Message)
	}

	run.payment = result
	run.advance(statePaid)
	return nil
}

func (s *checkoutService) persistOrder(ctx context.Context, q repository.Querier, run *checkoutRun) error {
	run.order.Status = domain.OrderStatusConfirmed

	lines := run.order.Lines
	order, err := q.CreateOrder(ctx, run.order)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.Lines = make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		saved, err := q.CreateOrderLine(ctx, l)
		if err != nil {
			return fmt.Errorf("failed to create order line: %w", err)
		}
		order.Lines = append(order.Lines, saved)
	}

	if _, err := q.CreatePayment(ctx, domain.Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		Method:        billing.NormalizeMethod(run.req.PaymentMethod),
		Gateway:       run.gateway.Name(),
		Amount:        run.total,
		TransactionID: run.payment.TransactionID,
	}); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	run.order = order
	run.advance(stateOrderPersisted)
	return nil
}

// clearCart removes the purchased lines. Their stock was reserved when they
// were added and is not returned.
func (s *checkoutService) clearCart(ctx context.Context, q repository.Querier, run *checkoutRun) error {
	if _, err := q.DeleteCartLines(ctx, run.cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	run.advance(stateCartCleared)
	return nil
}

func (s *checkoutService) recordNotification(ctx context.Context, q repository.Querier, run *checkoutRun) error {
	orderID := run.order.ID
	n, err := createNotification(ctx, q, domain.Notification{
		UserID:    run.userID,
		Type:      domain.NotificationOrderConfirmed,
		Message:   fmt.Sprintf("Your order %s for $%s is confirmed", orderID, run.total.StringFixed(2)),
		RelatedID: &orderID,
	})
	if err != nil {
		return err
	}
	run.notification = n
	return nil
}
