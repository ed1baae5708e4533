// Package quote turns a set of line items plus discount and tax parameters
// into deterministic, currency-exact monetary totals. It is the in-process
// boundary consumed by quote and invoice services; it performs no I/O and
// holds no state across calls.
package quote

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/pricing-core/discount"
	"github.com/noah-isme/pricing-core/money"
	"github.com/noah-isme/pricing-core/obs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Input is a complete quote calculation request. QuoteDiscount applies a
// single discount to the summed line totals; QuoteDiscounts applies a
// sequential chain instead and takes precedence when both are set.
type Input struct {
	LineItems      []LineItem      `json:"lineItems" validate:"required,min=1,dive"`
	QuoteDiscount  *discount.Spec  `json:"quoteDiscount,omitempty"`
	QuoteDiscounts []discount.Spec `json:"quoteDiscounts,omitempty"`
	Currency       string          `json:"currency" validate:"omitempty,len=3,alpha"`
}

// Calculation is the production output: every line's breakdown, the quote
// totals and the summed summary.
type Calculation struct {
	Lines   []LineCalculation `json:"lineCalculations"`
	Totals  Totals            `json:"totals"`
	Summary Summary           `json:"summary"`
}

// Calculate validates the input, normalizes currency, runs the full pipeline
// and returns the quote calculation. Every failure is returned as *Error
// with a uniform "quote calculation failed" message, so embedding handlers
// see a single error surface.
func Calculate(input Input, opts Options) (*Calculation, error) {
	calc, err := run(input, opts, nil)
	if err != nil {
		return nil, wrapCalcError(err)
	}
	return calc, nil
}

// CalculateDebug runs the same pipeline as Calculate with a trace collector
// attached, capturing every intermediate amount plus formatted display
// strings. The trace is diagnostic output only; the returned Calculation is
// numerically identical to the production path because both share one
// pipeline.
func CalculateDebug(input Input, opts Options) (*Calculation, *Trace, error) {
	trace := newTrace()
	calc, err := run(input, opts, trace)
	if err != nil {
		return nil, nil, wrapCalcError(err)
	}
	return calc, trace, nil
}

func run(input Input, opts Options, trace *Trace) (*Calculation, error) {
	opts = opts.normalized()
	start := time.Now()

	if err := checkSchema(input); err != nil {
		obs.ObserveCalculation("invalid", time.Since(start))
		return nil, err
	}

	currency := money.NormalizeCurrency(input.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	items, err := normalizeCurrencies(input.LineItems, currency)
	if err != nil {
		obs.ObserveCalculation("error", time.Since(start))
		return nil, err
	}

	lines, err := CalculateLines(items, opts)
	if err != nil {
		obs.ObserveCalculation("error", time.Since(start))
		return nil, err
	}

	quoteDiscounts := input.QuoteDiscounts
	if len(quoteDiscounts) == 0 && input.QuoteDiscount != nil {
		quoteDiscounts = []discount.Spec{*input.QuoteDiscount}
	}
	totals, err := CalculateTotalsMultiDiscount(lines.Calculations, quoteDiscounts, opts)
	if err != nil {
		obs.ObserveCalculation("error", time.Since(start))
		return nil, err
	}

	calc := &Calculation{
		Lines:   lines.Calculations,
		Totals:  totals,
		Summary: lines.Summary,
	}
	if trace != nil {
		trace.record(calc, currency, opts.Decimals)
	}
	opts.Logger.Debug().
		Str("currency", currency).
		Int("line_count", len(calc.Lines)).
		Str("grand_total", calc.Totals.GrandTotal.StringFixed(opts.Decimals)).
		Msg("quote_calculated")
	obs.ObserveCalculation("ok", time.Since(start))
	return calc, nil
}

func checkSchema(input Input) error {
	if len(input.LineItems) == 0 {
		return ErrEmptyLineItems
	}
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// normalizeCurrencies fills empty line-item currencies with the quote
// currency and rejects any explicit mismatch. Silently overwriting a
// conflicting currency would discard information a billing audit needs, so
// conversion has to be requested explicitly via money.Convert instead.
func normalizeCurrencies(items []LineItem, currency string) ([]LineItem, error) {
	out := make([]LineItem, len(items))
	for i, item := range items {
		switch money.NormalizeCurrency(item.UnitPrice.Currency) {
		case "":
			item.UnitPrice = money.New(item.UnitPrice.Amount, currency)
		case currency:
			item.UnitPrice = money.New(item.UnitPrice.Amount, currency)
		default:
			return nil, fmt.Errorf("%w: line %d priced in %s but quote is %s",
				money.ErrCurrencyMismatch, i, item.UnitPrice.Currency, currency)
		}
		if item.FixedDiscount != nil && item.FixedDiscount.Currency == "" {
			fd := money.New(item.FixedDiscount.Amount, currency)
			item.FixedDiscount = &fd
		}
		out[i] = item
	}
	return out, nil
}

// ValidateInput is a non-erroring schema pre-check: input shape, every line
// item, and any quote-level discount specs. Per-unit discounts are not
// valid at the quote level.
func ValidateInput(input Input) bool {
	if checkSchema(input) != nil {
		return false
	}
	for _, item := range input.LineItems {
		if !ValidateLineItem(item) {
			return false
		}
	}
	specs := input.QuoteDiscounts
	if input.QuoteDiscount != nil {
		specs = append(specs[:len(specs):len(specs)], *input.QuoteDiscount)
	}
	for _, spec := range specs {
		if spec.Kind == discount.KindPerUnit || spec.Validate() != nil {
			return false
		}
	}
	return true
}
