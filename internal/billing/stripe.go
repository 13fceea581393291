package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// StripeGateway charges cards through Stripe PaymentIntents.
type StripeGateway struct {
	config       StripeConfig
	createIntent func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// NewStripeGateway creates the Stripe gateway. Outside live mode every intent
// succeeds without a network call.
func NewStripeGateway(config StripeConfig) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	g := &StripeGateway{
		config:       config.withDefaults(),
		createIntent: simulateIntent,
	}

	if config.Live {
		stripe.Key = config.SecretKey
		// Gateway calls are never retried; a second attempt could double charge.
		stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(0),
		}))
		g.createIntent = paymentintent.New
	}

	return g, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) Supports(method string) bool {
	return method == "stripe" || method == "credit_card"
}

func (g *StripeGateway) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = g.config.Currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minorUnits(req.Amount)),
		Currency:      stripe.String(strings.ToLower(currency)),
		Confirm:       stripe.Bool(true),
		PaymentMethod: stripe.String(g.config.PaymentMethod),
		Description:   stripe.String(fmt.Sprintf("Order %s", req.OrderID)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID.String())
	params.AddMetadata("user_id", req.UserID.String())
	params.AddMetadata("payment_method", req.Method)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.createIntent(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return &PaymentResult{Success: false, Message: stripeErr.Msg}, nil
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return &PaymentResult{
			Success:       false,
			TransactionID: pi.ID,
			Message:       fmt.Sprintf("payment intent status %s", pi.Status),
		}, nil
	}

	return &PaymentResult{
		Success:       true,
		TransactionID: pi.ID,
		Message:       "Payment processed by Stripe",
	}, nil
}

// simulateIntent mirrors a confirmed PaymentIntent without calling Stripe.
func simulateIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params.Amount == nil || *params.Amount <= 0 {
		return nil, fmt.Errorf("stripe: amount must be positive")
	}
	return &stripe.PaymentIntent{
		ID:       "pi_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Amount:   *params.Amount,
		Currency: stripe.Currency(*params.Currency),
		Status:   stripe.PaymentIntentStatusSucceeded,
		Metadata: params.Metadata,
	}, nil
}
