// Package tax computes tax amounts for exclusive and tax-inclusive pricing
// and groups line taxes into a per-rate breakdown.
package tax

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/pricing-core/money"
)

var (
	// ErrInvalidRate is returned for rates outside the inclusive 0–100 range.
	// Billing correctness depends on never clamping a bad rate.
	ErrInvalidRate = errors.New("tax rate must be between 0 and 100")
	// ErrInactiveRule is returned when a named rule that is not active is
	// applied to a calculation.
	ErrInactiveRule = errors.New("tax rule is not active")
)

var hundred = decimal.NewFromInt(100)

// Rule is a named tax rate, e.g. NZ GST at 15 percent.
type Rule struct {
	Rate        decimal.Decimal `json:"rate"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Active      bool            `json:"isActive"`
}

// Result is the outcome of a single tax computation.
type Result struct {
	Taxable money.Money     `json:"taxableAmount"`
	Rate    decimal.Decimal `json:"taxRate"`
	Tax     money.Money     `json:"taxAmount"`
	Total   money.Money     `json:"totalAmount"`
}

// ValidateRate reports whether the rate is within the allowed 0–100 range.
func ValidateRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

func requireValidRate(rate decimal.Decimal) error {
	if !ValidateRate(rate) {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, rate)
	}
	return nil
}

// Calculate computes tax on an exclusive taxable base:
// tax = taxable * rate / 100, total = taxable + tax.
func Calculate(taxable money.Money, rate decimal.Decimal, decimals int32) (Result, error) {
	if err := requireValidRate(rate); err != nil {
		return Result{}, err
	}
	taxAmount := taxable.Percent(rate, decimals)
	total, err := taxable.Add(taxAmount, decimals)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Taxable: taxable.Round(decimals),
		Rate:    rate,
		Tax:     taxAmount,
		Total:   total,
	}, nil
}

// ExtractInclusive derives the taxable base and tax portion from a total that
// already contains tax: taxable = total / (1 + rate/100).
func ExtractInclusive(total money.Money, rate decimal.Decimal, decimals int32) (Result, error) {
	if err := requireValidRate(rate); err != nil {
		return Result{}, err
	}
	divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))
	taxable, err := total.Div(divisor, decimals)
	if err != nil {
		return Result{}, err
	}
	taxAmount, err := total.Sub(taxable, decimals)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Taxable: taxable,
		Rate:    rate,
		Tax:     taxAmount,
		Total:   total.Round(decimals),
	}, nil
}

// CalculateWithRule computes exclusive tax from a named rule instead of a
// raw rate, refusing inactive rules.
func CalculateWithRule(taxable money.Money, rule Rule, decimals int32) (Result, error) {
	if !rule.Active {
		return Result{}, fmt.Errorf("%w: %s", ErrInactiveRule, rule.Name)
	}
	return Calculate(taxable, rule.Rate, decimals)
}

// ExtractInclusiveWithRule derives the taxable base and tax portion from a
// tax-inclusive total using a named rule, refusing inactive rules.
func ExtractInclusiveWithRule(total money.Money, rule Rule, decimals int32) (Result, error) {
	if !rule.Active {
		return Result{}, fmt.Errorf("%w: %s", ErrInactiveRule, rule.Name)
	}
	return ExtractInclusive(total, rule.Rate, decimals)
}

// Line is the per-line input to Breakdown: the taxable base after discounts,
// the nominal rate, and whether the line is exempt.
type Line struct {
	Taxable money.Money
	Rate    decimal.Decimal
	Exempt  bool
}

// BreakdownEntry aggregates all lines sharing one effective tax rate.
type BreakdownEntry struct {
	Rate        decimal.Decimal `json:"rate"`
	Taxable     money.Money     `json:"taxableAmount"`
	Tax         money.Money     `json:"taxAmount"`
	Description string          `json:"description"`
}

// Breakdown groups lines by effective rate, sums taxable amounts per group
// and computes each group's tax. Exempt lines fall into the 0 percent group
// regardless of their nominal rate. Entries are returned with the exempt
// group first, then ascending rate. All lines must share one currency.
func Breakdown(lines []Line, decimals int32) ([]BreakdownEntry, error) {
	if len(lines) == 0 {
		return nil, money.ErrEmptyAmounts
	}
	currency := lines[0].Taxable.Currency
	groups := map[string]*BreakdownEntry{}
	order := []decimal.Decimal{}
	for _, line := range lines {
		rate := line.Rate
		if line.Exempt {
			rate = decimal.Zero
		}
		if err := requireValidRate(rate); err != nil {
			return nil, err
		}
		if line.Taxable.Currency != currency {
			return nil, fmt.Errorf("%w: %s vs %s", money.ErrCurrencyMismatch, currency, line.Taxable.Currency)
		}
		key := rate.String()
		entry, ok := groups[key]
		if !ok {
			entry = &BreakdownEntry{
				Rate:        rate,
				Taxable:     money.Zero(currency),
				Description: describeRate(rate),
			}
			groups[key] = entry
			order = append(order, rate)
		}
		taxable, err := entry.Taxable.Add(line.Taxable, decimals)
		if err != nil {
			return nil, err
		}
		entry.Taxable = taxable
	}
	sort.Slice(order, func(i, j int) bool { return order[i].LessThan(order[j]) })
	entries := make([]BreakdownEntry, 0, len(order))
	for _, rate := range order {
		entry := groups[rate.String()]
		entry.Tax = entry.Taxable.Percent(entry.Rate, decimals)
		entries = append(entries, *entry)
	}
	return entries, nil
}

func describeRate(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "Tax exempt (0%)"
	}
	return fmt.Sprintf("Tax at %s%%", rate)
}

// TotalFromBreakdown sums the tax amounts of all groups. Entries must share
// one currency.
func TotalFromBreakdown(entries []BreakdownEntry, decimals int32) (money.Money, error) {
	if len(entries) == 0 {
		return money.Money{}, money.ErrEmptyAmounts
	}
	amounts := make([]money.Money, 0, len(entries))
	for _, entry := range entries {
		amounts = append(amounts, entry.Tax)
	}
	return money.Sum(amounts, decimals)
}
