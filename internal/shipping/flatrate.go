package shipping

import "github.com/shopspring/decimal"

// FlatRateProvider charges the same fee for every order.
type FlatRateProvider struct {
	rate FlatRate
}

// FlatRate defines a single flat-rate shipping option.
type FlatRate struct {
	ServiceName string
	ServiceCode string
	Fee         decimal.Decimal
	DaysMin     int
	DaysMax     int
}

func NewFlatRateProvider(rate FlatRate) Provider {
	return &FlatRateProvider{rate: rate}
}

// NewStandardFlatRate returns the default standard-shipping option at fee.
func NewStandardFlatRate(fee decimal.Decimal) Provider {
	return NewFlatRateProvider(FlatRate{
		ServiceName: "Standard Shipping",
		ServiceCode: "STD",
		Fee:         fee,
		DaysMin:     3,
		DaysMax:     5,
	})
}

func (p *FlatRateProvider) Quote() Rate {
	return Rate{
		Carrier:     "Flat Rate",
		ServiceName: p.rate.ServiceName,
		ServiceCode: p.rate.ServiceCode,
		Fee:         p.rate.Fee,
		DaysMin:     p.rate.DaysMin,
		DaysMax:     p.rate.DaysMax,
	}
}
