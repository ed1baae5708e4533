package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/pricing-core/discount"
	"github.com/noah-isme/pricing-core/money"
	"github.com/noah-isme/pricing-core/tax"
)

// LineItem is the immutable input for one quoted line. Unit prices carry
// their own currency; the orchestrator enforces that it matches the quote
// currency before any arithmetic happens.
type LineItem struct {
	Description  string           `json:"description" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    money.Money      `json:"unitPrice"`
	Unit         string           `json:"unit,omitempty"`
	ServiceType  string           `json:"serviceType,omitempty"`
	TaxExempt    *bool            `json:"isTaxExempt,omitempty"`
	TaxInclusive bool             `json:"taxInclusive,omitempty"`
	TaxRate      *decimal.Decimal `json:"taxRate,omitempty"`
	Discount     *discount.Spec   `json:"discount,omitempty"`

	// PercentageDiscount and FixedDiscount predate Discount and are kept
	// for callers that still send the flat fields. Discount wins when both
	// are present.
	PercentageDiscount *decimal.Decimal `json:"percentageDiscount,omitempty"`
	FixedDiscount      *money.Money     `json:"fixedDiscount,omitempty"`
}

// LineCalculation is the full monetary breakdown of one line item.
type LineCalculation struct {
	Item      LineItem        `json:"lineItem"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice money.Money     `json:"unitPrice"`
	Subtotal  money.Money     `json:"subtotal"`
	Discount  money.Money     `json:"discountAmount"`
	Taxable   money.Money     `json:"taxableAmount"`
	Tax       money.Money     `json:"taxAmount"`
	Total     money.Money     `json:"totalAmount"`
	Rate      decimal.Decimal `json:"taxRate"`
	Exempt    bool            `json:"isTaxExempt"`
}

// Summary aggregates the line calculations of one quote.
type Summary struct {
	Quantity decimal.Decimal `json:"totalQuantity"`
	Subtotal money.Money     `json:"subtotal"`
	Discount money.Money     `json:"discountAmount"`
	Taxable  money.Money     `json:"taxableAmount"`
	Tax      money.Money     `json:"taxAmount"`
	Total    money.Money     `json:"totalAmount"`
}

// LinesResult pairs per-line calculations with their summed summary.
type LinesResult struct {
	Calculations []LineCalculation `json:"calculations"`
	Summary      Summary           `json:"summary"`
}

// CalculateLine computes the breakdown of a single line item:
// subtotal, then discount, then tax on the remaining taxable amount.
func CalculateLine(item LineItem, opts Options) (LineCalculation, error) {
	opts = opts.normalized()
	if !item.Quantity.IsPositive() {
		return LineCalculation{}, fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidLineItem, item.Quantity)
	}
	if item.UnitPrice.Amount.IsNegative() {
		return LineCalculation{}, fmt.Errorf("%w: unit price must not be negative, got %s", ErrInvalidLineItem, item.UnitPrice.Amount)
	}

	// item is a copy; canonicalize its currency so every derived amount and
	// the echoed UnitPrice carry the stored form.
	item.UnitPrice.Currency = money.NormalizeCurrency(item.UnitPrice.Currency)

	d := opts.Decimals
	currency := item.UnitPrice.Currency
	subtotal := item.UnitPrice.Mul(item.Quantity, d)

	discountAmount := money.Zero(currency)
	taxable := subtotal
	spec, err := resolveDiscount(item)
	if err != nil {
		return LineCalculation{}, err
	}
	if spec != nil {
		res, err := discount.ApplyWithQuantity(subtotal, *spec, item.Quantity, d)
		if err != nil {
			return LineCalculation{}, err
		}
		discountAmount = res.Discount
		taxable = res.Final
	}

	rate := opts.DefaultTaxRate
	if item.TaxRate != nil {
		rate = *item.TaxRate
	}
	if !tax.ValidateRate(rate) {
		return LineCalculation{}, fmt.Errorf("%w: got %s", tax.ErrInvalidRate, rate)
	}
	exempt := opts.Exempt(item.ServiceType)
	if item.TaxExempt != nil {
		exempt = *item.TaxExempt
	}

	taxAmount := money.Zero(currency)
	total := taxable.Round(d)
	switch {
	case exempt || rate.IsZero():
		// no tax on exempt or zero-rated lines
	case item.TaxInclusive:
		res, err := tax.ExtractInclusive(taxable, rate, d)
		if err != nil {
			return LineCalculation{}, err
		}
		taxable = res.Taxable
		taxAmount = res.Tax
		total = res.Total
	default:
		res, err := tax.Calculate(taxable, rate, d)
		if err != nil {
			return LineCalculation{}, err
		}
		taxAmount = res.Tax
		total = res.Total
	}

	return LineCalculation{
		Item:      item,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Subtotal:  subtotal,
		Discount:  discountAmount,
		Taxable:   taxable,
		Tax:       taxAmount,
		Total:     total,
		Rate:      rate,
		Exempt:    exempt,
	}, nil
}

// CalculateLines runs CalculateLine over every item and sums the results.
// All items must share one currency.
func CalculateLines(items []LineItem, opts Options) (LinesResult, error) {
	opts = opts.normalized()
	if len(items) == 0 {
		return LinesResult{}, ErrEmptyLineItems
	}
	currency := money.NormalizeCurrency(items[0].UnitPrice.Currency)
	calcs := make([]LineCalculation, 0, len(items))
	for _, item := range items {
		if money.NormalizeCurrency(item.UnitPrice.Currency) != currency {
			return LinesResult{}, fmt.Errorf("%w: %s vs %s", money.ErrCurrencyMismatch, currency, item.UnitPrice.Currency)
		}
		calc, err := CalculateLine(item, opts)
		if err != nil {
			return LinesResult{}, err
		}
		calcs = append(calcs, calc)
	}
	summary, err := summarize(calcs, currency, opts.Decimals)
	if err != nil {
		return LinesResult{}, err
	}
	return LinesResult{Calculations: calcs, Summary: summary}, nil
}

func summarize(calcs []LineCalculation, currency string, decimals int32) (Summary, error) {
	summary := Summary{
		Quantity: decimal.Zero,
		Subtotal: money.Zero(currency),
		Discount: money.Zero(currency),
		Taxable:  money.Zero(currency),
		Tax:      money.Zero(currency),
		Total:    money.Zero(currency),
	}
	for _, calc := range calcs {
		var err error
		summary.Quantity = summary.Quantity.Add(calc.Quantity)
		if summary.Subtotal, err = summary.Subtotal.Add(calc.Subtotal, decimals); err != nil {
			return Summary{}, err
		}
		if summary.Discount, err = summary.Discount.Add(calc.Discount, decimals); err != nil {
			return Summary{}, err
		}
		if summary.Taxable, err = summary.Taxable.Add(calc.Taxable, decimals); err != nil {
			return Summary{}, err
		}
		if summary.Tax, err = summary.Tax.Add(calc.Tax, decimals); err != nil {
			return Summary{}, err
		}
		if summary.Total, err = summary.Total.Add(calc.Total, decimals); err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

func resolveDiscount(item LineItem) (*discount.Spec, error) {
	if item.Discount != nil {
		return item.Discount, nil
	}
	if item.PercentageDiscount != nil {
		return &discount.Spec{Kind: discount.KindPercentage, Value: *item.PercentageDiscount}, nil
	}
	if item.FixedDiscount != nil {
		if money.NormalizeCurrency(item.FixedDiscount.Currency) != money.NormalizeCurrency(item.UnitPrice.Currency) {
			return nil, fmt.Errorf("%w: fixed discount %s vs unit price %s",
				money.ErrCurrencyMismatch, item.FixedDiscount.Currency, item.UnitPrice.Currency)
		}
		return &discount.Spec{Kind: discount.KindFixedAmount, Value: item.FixedDiscount.Amount}, nil
	}
	return nil, nil
}

// ValidateLineItem is a non-erroring pre-check for callers that want to
// validate a line without running the calculation: quantity positive, unit
// price non-negative, tax rate in range, and any discount well-formed and
// not larger than the line subtotal.
func ValidateLineItem(item LineItem) bool {
	if !item.Quantity.IsPositive() || item.UnitPrice.Amount.IsNegative() {
		return false
	}
	if item.TaxRate != nil && !tax.ValidateRate(*item.TaxRate) {
		return false
	}
	spec, err := resolveDiscount(item)
	if err != nil {
		return false
	}
	if spec == nil {
		return true
	}
	if err := spec.Validate(); err != nil {
		return false
	}
	subtotal := item.UnitPrice.Mul(item.Quantity, money.DefaultDecimals)
	switch spec.Kind {
	case discount.KindFixedAmount:
		return !spec.Value.GreaterThan(subtotal.Amount)
	case discount.KindPerUnit:
		return !spec.Value.Mul(item.Quantity).GreaterThan(subtotal.Amount)
	default:
		return true
	}
}

// TaxBreakdown groups the computed lines by effective tax rate, exempt lines
// first, and returns per-rate taxable and tax sums.
func TaxBreakdown(calcs []LineCalculation, decimals int32) ([]tax.BreakdownEntry, error) {
	lines := make([]tax.Line, 0, len(calcs))
	for _, calc := range calcs {
		lines = append(lines, tax.Line{Taxable: calc.Taxable, Rate: calc.Rate, Exempt: calc.Exempt})
	}
	return tax.Breakdown(lines, decimals)
}
