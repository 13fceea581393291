package billing

import (
	"errors"
	"strings"
)

// StripeConfig contains configuration for the Stripe gateway.
type StripeConfig struct {
	// SecretKey is the Stripe secret key (sk_test_... or sk_live_...).
	SecretKey string

	// Live sends real PaymentIntent requests. When false, intents are
	// simulated locally and no network call is made.
	Live bool

	// Currency is the ISO currency code used for every charge. Default: usd
	Currency string

	// PaymentMethod is attached to confirmed intents in live mode.
	// Default: pm_card_visa (test-mode card)
	PaymentMethod string
}

// Validate checks that live mode has credentials.
func (c *StripeConfig) Validate() error {
	if c.Live && c.SecretKey == "" {
		return errors.New("stripe: secret key is required in live mode")
	}
	return nil
}

// IsTestMode returns true unless a live secret key is configured.
func (c *StripeConfig) IsTestMode() bool {
	return !strings.HasPrefix(c.SecretKey, "sk_live_")
}

func (c *StripeConfig) withDefaults() StripeConfig {
	out := *c
	if out.Currency == "" {
		out.Currency = "usd"
	}
	if out.PaymentMethod == "" {
		out.PaymentMethod = "pm_card_visa"
	}
	return out
}
