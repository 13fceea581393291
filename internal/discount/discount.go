// Package discount implements administrative price reductions.
package discount

import (
	"strings"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/shopspring/decimal"
)

// Type is the closed set of supported discount strategies.
type Type string

const (
	FixedAmount Type = "FIXED_AMOUNT"
	Percentage  Type = "PERCENTAGE"
)

// Strategy computes a product's new price from its current price.
type Strategy interface {
	Type() Type
	Apply(price decimal.Decimal) decimal.Decimal
}

// FixedAmountStrategy subtracts a fixed amount, never going below zero.
type FixedAmountStrategy struct {
	Amount decimal.Decimal
}

func (s FixedAmountStrategy) Type() Type { return FixedAmount }

func (s FixedAmountStrategy) Apply(price decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, price.Sub(s.Amount))
}

var ninetyNine = decimal.New(99, -2)

// PercentageStrategy discounts by Percent (0.20 = 20%), truncates to a whole
// unit, then re-applies a .99 ending: floor(price × (1 - pct)) + 0.99.
type PercentageStrategy struct {
	Percent decimal.Decimal
}

func (s PercentageStrategy) Type() Type { return Percentage }

func (s PercentageStrategy) Apply(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(s.Percent)).Floor().Add(ninetyNine)
}

// Resolver maps a discount type to its configured strategy.
type Resolver struct {
	strategies map[Type]Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	r := &Resolver{strategies: make(map[Type]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Type()] = s
	}
	return r
}

// Resolve parses token case-insensitively and returns its strategy.
// An unrecognized token is an invalid-argument error.
func (r *Resolver) Resolve(token string) (Strategy, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(token)))
	s, ok := r.strategies[t]
	if !ok {
		return nil, domain.Errorf(domain.EINVALID, "discount.resolve", "unknown discount type: %q", token)
	}
	return s, nil
}
