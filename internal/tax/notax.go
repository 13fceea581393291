package tax

import "github.com/shopspring/decimal"

// NoTaxCalculator returns zero tax for all calculations.
type NoTaxCalculator struct{}

func NewNoTaxCalculator() Calculator {
	return &NoTaxCalculator{}
}

func (c *NoTaxCalculator) CalculateTax(decimal.Decimal) Result {
	return Result{Amount: decimal.Zero, Rate: decimal.Zero, Name: "Tax Exempt"}
}
