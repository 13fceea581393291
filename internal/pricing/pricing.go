// Package pricing computes checkout totals through a fixed, ordered chain of
// price-transforming stages.
package pricing

import (
	"strings"

	"github.com/dukerupert/mercato/internal/shipping"
	"github.com/dukerupert/mercato/internal/tax"
	"github.com/shopspring/decimal"
)

// Calculator produces a monetary amount.
type Calculator interface {
	Amount() decimal.Decimal
}

// Line is a priced quantity of one product.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Base is the root calculator: the sum of unit price × quantity.
type Base []Line

func (b Base) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Stage is a pure transform applied to the running amount.
type Stage struct {
	Name  string
	Apply func(decimal.Decimal) decimal.Decimal
}

// decorated wraps a calculator and transforms its output.
type decorated struct {
	inner Calculator
	stage Stage
}

func (d decorated) Amount() decimal.Decimal {
	return d.stage.Apply(d.inner.Amount())
}

// Decorate wraps c with stage.
func Decorate(c Calculator, stage Stage) Calculator {
	return decorated{inner: c, stage: stage}
}

// Pipeline is an ordered list of stages. The zero value is the identity.
type Pipeline []Stage

// Wrap decorates base with every stage, first stage innermost.
func (p Pipeline) Wrap(base Calculator) Calculator {
	c := base
	for _, s := range p {
		c = Decorate(c, s)
	}
	return c
}

// Names returns stage names in application order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name
	}
	return names
}

// Coupon subtracts amount when code is non-blank, floored at zero. A blank
// code yields an identity stage.
func Coupon(code string, amount decimal.Decimal) Stage {
	if strings.TrimSpace(code) == "" {
		return Stage{Name: "coupon", Apply: func(d decimal.Decimal) decimal.Decimal { return d }}
	}
	return Stage{
		Name: "coupon",
		Apply: func(d decimal.Decimal) decimal.Decimal {
			return decimal.Max(decimal.Zero, d.Sub(amount))
		},
	}
}

// Tax adds the tax owed on the running amount.
func Tax(calc tax.Calculator) Stage {
	return Stage{
		Name: "tax",
		Apply: func(d decimal.Decimal) decimal.Decimal {
			return d.Add(calc.CalculateTax(d).Amount)
		},
	}
}

// Shipping adds the provider's flat fee.
func Shipping(provider shipping.Provider) Stage {
	return Stage{
		Name: "shipping",
		Apply: func(d decimal.Decimal) decimal.Decimal {
			return d.Add(provider.Quote().Fee)
		},
	}
}
