package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/pricing-core/discount"
	"github.com/noah-isme/pricing-core/money"
)

// Totals is the quote-level roll-up. LineTotal is the payable sum of all
// line totals (tax already included per line) before any quote-level
// discount; Taxable is that sum after the discount, and GrandTotal equals
// Taxable rounded. A quote-level discount reduces the payable total without
// reopening the per-line tax calculation.
type Totals struct {
	Subtotal   money.Money `json:"subtotal"`
	LineTotal  money.Money `json:"lineTotal"`
	Discount   money.Money `json:"discountAmount"`
	Taxable    money.Money `json:"taxableAmount"`
	Tax        money.Money `json:"taxAmount"`
	GrandTotal money.Money `json:"grandTotal"`
	Currency   string      `json:"currency"`
}

// CalculateTotals aggregates line calculations into quote totals, applying
// an optional single quote-level discount on top of the summed line totals.
func CalculateTotals(calcs []LineCalculation, quoteDiscount *discount.Spec, opts Options) (Totals, error) {
	var specs []discount.Spec
	if quoteDiscount != nil {
		specs = []discount.Spec{*quoteDiscount}
	}
	return CalculateTotalsMultiDiscount(calcs, specs, opts)
}

// CalculateTotalsMultiDiscount is CalculateTotals with a sequential chain of
// quote-level discounts, each applied to the amount remaining after the
// previous one.
func CalculateTotalsMultiDiscount(calcs []LineCalculation, quoteDiscounts []discount.Spec, opts Options) (Totals, error) {
	opts = opts.normalized()
	if len(calcs) == 0 {
		return Totals{}, ErrEmptyLineItems
	}
	d := opts.Decimals
	currency := calcs[0].Subtotal.Currency

	subtotal := money.Zero(currency)
	taxTotal := money.Zero(currency)
	lineTotal := money.Zero(currency)
	for _, calc := range calcs {
		if calc.Subtotal.Currency != currency {
			return Totals{}, fmt.Errorf("%w: %s vs %s", money.ErrCurrencyMismatch, currency, calc.Subtotal.Currency)
		}
		var err error
		if subtotal, err = subtotal.Add(calc.Subtotal, d); err != nil {
			return Totals{}, err
		}
		if taxTotal, err = taxTotal.Add(calc.Tax, d); err != nil {
			return Totals{}, err
		}
		if lineTotal, err = lineTotal.Add(calc.Total, d); err != nil {
			return Totals{}, err
		}
	}

	discountAmount := money.Zero(currency)
	taxable := lineTotal
	if len(quoteDiscounts) > 0 {
		res, err := discount.ApplyChain(lineTotal, quoteDiscounts, d)
		if err != nil {
			return Totals{}, err
		}
		discountAmount = res.Discount
		taxable = res.Final
	}

	return Totals{
		Subtotal:   subtotal,
		LineTotal:  lineTotal,
		Discount:   discountAmount,
		Taxable:    taxable,
		Tax:        taxTotal,
		GrandTotal: taxable.Round(d),
		Currency:   currency,
	}, nil
}

// ValidateTotals is a non-erroring invariant check over computed totals:
// every amount shares the quote currency, nothing is negative, the discount
// never exceeds the summed line totals, the taxable amount is the line total
// less the discount, and the grand total equals the taxable amount.
func ValidateTotals(t Totals) bool {
	for _, m := range []money.Money{t.Subtotal, t.LineTotal, t.Discount, t.Taxable, t.Tax, t.GrandTotal} {
		if m.Currency != t.Currency || m.IsNegative() {
			return false
		}
	}
	if t.Discount.Amount.GreaterThan(t.LineTotal.Amount) {
		return false
	}
	if !t.LineTotal.Amount.Sub(t.Discount.Amount).Equal(t.Taxable.Amount) {
		return false
	}
	return t.GrandTotal.Equal(t.Taxable)
}

// TotalsPercentages derives the discount and tax shares relative to the
// subtotal, rounded to the given precision, returning zero for both when
// the subtotal is zero.
func TotalsPercentages(t Totals, decimals int32) (discountPct, taxPct decimal.Decimal) {
	if t.Subtotal.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	discountPct = t.Discount.Amount.Mul(hundred).Div(t.Subtotal.Amount).Round(decimals)
	taxPct = t.Tax.Amount.Mul(hundred).Div(t.Subtotal.Amount).Round(decimals)
	return discountPct, taxPct
}
