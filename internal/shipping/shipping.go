// Package shipping quotes shipping fees for an order.
package shipping

import "github.com/shopspring/decimal"

// Provider quotes the shipping fee applied at checkout.
type Provider interface {
	Quote() Rate
}

// Rate represents a shipping option and its fee.
type Rate struct {
	Carrier     string
	ServiceName string
	ServiceCode string
	Fee         decimal.Decimal
	DaysMin     int
	DaysMax     int
}
