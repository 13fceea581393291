package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PayPalGateway is a simulated PayPal checkout. It approves every positive charge.
type PayPalGateway struct{}

func NewPayPalGateway() *PayPalGateway {
	return &PayPalGateway{}
}

func (g *PayPalGateway) Name() string { return "paypal" }

func (g *PayPalGateway) Supports(method string) bool {
	return method == "paypal"
}

func (g *PayPalGateway) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return &PaymentResult{Success: false, Message: "amount must be positive"}, nil
	}
	return &PaymentResult{
		Success:       true,
		TransactionID: "PAYPAL-" + uuid.NewString(),
		Message:       fmt.Sprintf("PayPal captured %s", req.Amount.StringFixed(2)),
	}, nil
}
