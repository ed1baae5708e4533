package quote

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pricing-core/money"
	"github.com/noah-isme/pricing-core/tax"
)

// DefaultCurrency is assumed when an input does not declare one.
const DefaultCurrency = "NZD"

// DefaultTaxRate is the NZ GST rate applied when a line item carries no
// explicit rate.
var DefaultTaxRate = decimal.NewFromInt(15)

// Options carries the calculation policy supplied by the caller. The engine
// owns no configuration of its own; currency precision, the fallback tax
// rate and the exemption rule all arrive here.
type Options struct {
	// Decimals is the minor-unit precision of the quote currency.
	Decimals int32
	// DefaultTaxRate applies to line items without an explicit rate.
	DefaultTaxRate decimal.Decimal
	// Exempt decides tax exemption by service type when a line item does
	// not override it.
	Exempt tax.ExemptionPolicy
	// Logger receives debug events for each pipeline stage. Defaults to a
	// no-op logger so the engine stays silent unless the embedder opts in.
	Logger zerolog.Logger
}

// DefaultOptions returns the standard policy: two decimal places, 15% GST,
// the default exemption rule and no logging.
func DefaultOptions() Options {
	return Options{
		Decimals:       money.DefaultDecimals,
		DefaultTaxRate: DefaultTaxRate,
		Exempt:         tax.DefaultExemptionPolicy,
		Logger:         zerolog.Nop(),
	}
}

func (o Options) normalized() Options {
	if o.Decimals < 0 {
		o.Decimals = money.DefaultDecimals
	}
	if o.Exempt == nil {
		o.Exempt = tax.DefaultExemptionPolicy
	}
	return o
}
