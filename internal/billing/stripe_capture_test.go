package billing

import "github.com/stripe/stripe-go/v83"

// PaymentIntentCapture records the fields of a PaymentIntentParams under test.
type PaymentIntentCapture struct {
	Amount         int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

func captureIntent(dst **PaymentIntentCapture) func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		c := &PaymentIntentCapture{
			Amount:   *params.Amount,
			Currency: *params.Currency,
			Metadata: params.Metadata,
		}
		if params.IdempotencyKey != nil {
			c.IdempotencyKey = *params.IdempotencyKey
		}
		*dst = c
		return simulateIntent(params)
	}
}
