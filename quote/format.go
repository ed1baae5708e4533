package quote

import (
	"fmt"

	"github.com/noah-isme/pricing-core/money"
)

var currencySymbols = map[string]string{
	"NZD": "$",
	"USD": "$",
	"AUD": "$",
	"CAD": "$",
	"SGD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Format renders an amount for display, e.g. "$123.45". Currencies without
// a known symbol fall back to "NZD 123.45" style.
func Format(m money.Money, decimals int32) string {
	if symbol, ok := currencySymbols[m.Currency]; ok {
		return symbol + m.StringFixed(decimals)
	}
	return m.Currency + " " + m.StringFixed(decimals)
}

// DisplayBreakdown is a purely presentational view of a computed quote:
// one string per line plus the totals block. It performs no new arithmetic.
type DisplayBreakdown struct {
	Lines      []string `json:"lines"`
	Subtotal   string   `json:"subtotal"`
	Discount   string   `json:"discountAmount"`
	Tax        string   `json:"taxAmount"`
	GrandTotal string   `json:"grandTotal"`
}

// Breakdown formats a computed calculation into display strings.
func Breakdown(calc *Calculation, decimals int32) DisplayBreakdown {
	lines := make([]string, 0, len(calc.Lines))
	for _, line := range calc.Lines {
		lines = append(lines, fmt.Sprintf("%s: %s", line.Item.Description, formatLine(line, decimals)))
	}
	return DisplayBreakdown{
		Lines:      lines,
		Subtotal:   Format(calc.Totals.Subtotal, decimals),
		Discount:   Format(calc.Totals.Discount, decimals),
		Tax:        Format(calc.Totals.Tax, decimals),
		GrandTotal: Format(calc.Totals.GrandTotal, decimals),
	}
}
