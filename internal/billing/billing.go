// Package billing resolves a payment method to a gateway and charges it.
package billing

import (
	"context"
	"strings"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway charges a payment method.
// Implementations: StripeGateway, PayPalGateway, MockGateway
type Gateway interface {
	// Name identifies the gateway in logs, metrics and payment records.
	Name() string

	// Supports reports whether this gateway handles method. method is
	// already lower-cased and trimmed.
	Supports(method string) bool

	// ProcessPayment charges the request exactly once. A declined charge is
	// reported through PaymentResult.Success, transport failures through err.
	ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// PaymentRequest describes a single charge.
type PaymentRequest struct {
	OrderID  uuid.UUID
	UserID   uuid.UUID
	Amount   decimal.Decimal
	Currency string
	Method   string

	// IdempotencyKey is forwarded to gateways that support it.
	IdempotencyKey string
}

// PaymentResult is the gateway's verdict.
type PaymentResult struct {
	Success       bool
	TransactionID string
	Message       string
}

// NormalizeMethod lower-cases and trims a payment method identifier.
func NormalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}

// Resolver selects a gateway for a payment method. Gateways are tried in
// registration order and the first match wins.
type Resolver struct {
	gateways []Gateway
}

func NewResolver(gateways ...Gateway) *Resolver {
	return &Resolver{gateways: gateways}
}

// Resolve returns the first gateway supporting method. No match is an
// invalid-argument error; there is no default gateway.
func (r *Resolver) Resolve(method string) (Gateway, error) {
	m := NormalizeMethod(method)
	if m != "" {
		for _, g := range r.gateways {
			if g.Supports(m) {
				return g, nil
			}
		}
	}
	return nil, domain.Errorf(domain.EINVALID, "billing.resolve", "unsupported payment method: %q", method)
}

// Gateways returns the registered gateways in resolution order.
func (r *Resolver) Gateways() []Gateway {
	out := make([]Gateway, len(r.gateways))
	copy(out, r.gateways)
	return out
}

// minorUnits converts an amount to cents, rounding half-up.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
