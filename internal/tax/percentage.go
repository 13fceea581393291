package tax

import "github.com/shopspring/decimal"

// PercentageCalculator calculates tax using a single flat rate.
type PercentageCalculator struct {
	rate decimal.Decimal // e.g., 0.21 for 21%
}

func NewPercentageCalculator(rate decimal.Decimal) Calculator {
	return &PercentageCalculator{rate: rate}
}

// CalculateTax returns taxable × rate rounded half-up to cents.
func (c *PercentageCalculator) CalculateTax(taxable decimal.Decimal) Result {
	return Result{
		Amount: taxable.Mul(c.rate).Round(2),
		Rate:   c.rate,
		Name:   "Default Sales Tax",
	}
}
