package pricing

import (
	"github.com/dukerupert/mercato/internal/shipping"
	"github.com/dukerupert/mercato/internal/tax"
	"github.com/shopspring/decimal"
)

// CheckoutPricer builds the checkout pipeline: coupon, then tax, then shipping.
// It holds only fixed configuration and is safe for concurrent use.
type CheckoutPricer struct {
	couponAmount decimal.Decimal
	tax          tax.Calculator
	shipping     shipping.Provider
}

func NewCheckoutPricer(couponAmount decimal.Decimal, taxCalc tax.Calculator, ship shipping.Provider) *CheckoutPricer {
	return &CheckoutPricer{
		couponAmount: couponAmount,
		tax:          taxCalc,
		shipping:     ship,
	}
}

// Pipeline returns the ordered stages for a checkout using couponCode.
func (p *CheckoutPricer) Pipeline(couponCode string) Pipeline {
	return Pipeline{
		Coupon(couponCode, p.couponAmount),
		Tax(p.tax),
		Shipping(p.shipping),
	}
}

// Total prices lines for a checkout.
func (p *CheckoutPricer) Total(lines []Line, couponCode string) decimal.Decimal {
	return p.Pipeline(couponCode).Wrap(Base(lines)).Amount()
}
