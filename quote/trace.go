package quote

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/pricing-core/money"
)

// Trace is the structured diagnostic record produced by CalculateDebug. It
// mirrors the production result step by step and adds formatted display
// strings; it must never be used to derive totals.
type Trace struct {
	ID       uuid.UUID   `json:"traceId"`
	Currency string      `json:"currency"`
	Lines    []LineTrace `json:"lines"`
	Quote    QuoteTrace  `json:"quote"`
}

// LineTrace captures one line's inputs and every intermediate amount.
type LineTrace struct {
	Description string      `json:"description"`
	Item        LineItem    `json:"input"`
	Subtotal    money.Money `json:"subtotal"`
	Discount    money.Money `json:"discountAmount"`
	Taxable     money.Money `json:"taxableAmount"`
	Tax         money.Money `json:"taxAmount"`
	Total       money.Money `json:"totalAmount"`
	Formatted   string      `json:"formatted"`
}

// QuoteTrace captures the quote-level aggregation steps.
type QuoteTrace struct {
	LineTotal  money.Money `json:"lineTotal"`
	Discount   money.Money `json:"discountAmount"`
	Taxable    money.Money `json:"taxableAmount"`
	Tax        money.Money `json:"taxAmount"`
	GrandTotal money.Money `json:"grandTotal"`
	Formatted  string      `json:"formatted"`
}

func newTrace() *Trace {
	return &Trace{ID: uuid.New()}
}

func (t *Trace) record(calc *Calculation, currency string, decimals int32) {
	t.Currency = currency
	t.Lines = make([]LineTrace, 0, len(calc.Lines))
	for _, line := range calc.Lines {
		t.Lines = append(t.Lines, LineTrace{
			Description: line.Item.Description,
			Item:        line.Item,
			Subtotal:    line.Subtotal,
			Discount:    line.Discount,
			Taxable:     line.Taxable,
			Tax:         line.Tax,
			Total:       line.Total,
			Formatted:   formatLine(line, decimals),
		})
	}
	t.Quote = QuoteTrace{
		LineTotal:  calc.Totals.LineTotal,
		Discount:   calc.Totals.Discount,
		Taxable:    calc.Totals.Taxable,
		Tax:        calc.Totals.Tax,
		GrandTotal: calc.Totals.GrandTotal,
		Formatted: fmt.Sprintf("lines %s; discount %s; tax %s; grand total %s",
			Format(calc.Totals.LineTotal, decimals),
			Format(calc.Totals.Discount, decimals),
			Format(calc.Totals.Tax, decimals),
			Format(calc.Totals.GrandTotal, decimals)),
	}
}

func formatLine(line LineCalculation, decimals int32) string {
	return fmt.Sprintf("%s x %s = %s; discount %s; tax %s; total %s",
		line.Quantity,
		Format(line.UnitPrice, decimals),
		Format(line.Subtotal, decimals),
		Format(line.Discount, decimals),
		Format(line.Tax, decimals),
		Format(line.Total, decimals))
}
