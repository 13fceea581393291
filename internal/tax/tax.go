// Package tax computes sales tax on a taxable amount.
package tax

import "github.com/shopspring/decimal"

// Calculator defines the interface for tax calculation.
// Implementations: PercentageCalculator, NoTaxCalculator
type Calculator interface {
	// CalculateTax computes tax owed on taxable. Shipping is never part of taxable.
	CalculateTax(taxable decimal.Decimal) Result
}

// Result contains the calculated tax amount and the rate applied.
type Result struct {
	Amount decimal.Decimal
	Rate   decimal.Decimal
	Name   string
}
