package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-core/money"
	"github.com/noah-isme/pricing-core/tax"
)

func nzd(t *testing.T, value string) money.Money {
	t.Helper()
	m, err := money.FromString(value, "NZD")
	require.NoError(t, err)
	return m
}

func TestCalculateExclusive(t *testing.T) {
	res, err := tax.Calculate(nzd(t, "200.00"), decimal.NewFromInt(15), 2)
	require.NoError(t, err)
	require.Equal(t, "30.00", res.Tax.StringFixed(2))
	require.Equal(t, "230.00", res.Total.StringFixed(2))
	require.Equal(t, "200.00", res.Taxable.StringFixed(2))
}

func TestExtractInclusive(t *testing.T) {
	res, err := tax.ExtractInclusive(nzd(t, "115.00"), decimal.NewFromInt(15), 2)
	require.NoError(t, err)
	require.Equal(t, "100.00", res.Taxable.StringFixed(2))
	require.Equal(t, "15.00", res.Tax.StringFixed(2))
	require.Equal(t, "115.00", res.Total.StringFixed(2))
}

func TestCalculateWithRule(t *testing.T) {
	gst := tax.Rule{Rate: decimal.NewFromInt(15), Name: "GST", Active: true}

	res, err := tax.CalculateWithRule(nzd(t, "200.00"), gst, 2)
	require.NoError(t, err)
	require.Equal(t, "30.00", res.Tax.StringFixed(2))
	require.Equal(t, "230.00", res.Total.StringFixed(2))

	incl, err := tax.ExtractInclusiveWithRule(nzd(t, "115.00"), gst, 2)
	require.NoError(t, err)
	require.Equal(t, "100.00", incl.Taxable.StringFixed(2))
	require.Equal(t, "15.00", incl.Tax.StringFixed(2))
}

func TestInactiveRuleRefused(t *testing.T) {
	retired := tax.Rule{Rate: decimal.NewFromInt(12), Name: "GST 2009", Active: false}

	_, err := tax.CalculateWithRule(nzd(t, "100.00"), retired, 2)
	require.ErrorIs(t, err, tax.ErrInactiveRule)
	_, err = tax.ExtractInclusiveWithRule(nzd(t, "112.00"), retired, 2)
	require.ErrorIs(t, err, tax.ErrInactiveRule)
}

func TestRuleRateStillValidated(t *testing.T) {
	bogus := tax.Rule{Rate: decimal.NewFromInt(150), Name: "bogus", Active: true}
	_, err := tax.CalculateWithRule(nzd(t, "100.00"), bogus, 2)
	require.ErrorIs(t, err, tax.ErrInvalidRate)
}

func TestInvalidRates(t *testing.T) {
	for _, rate := range []decimal.Decimal{
		decimal.NewFromInt(-1),
		decimal.NewFromInt(101),
	} {
		_, err := tax.Calculate(nzd(t, "100.00"), rate, 2)
		require.ErrorIs(t, err, tax.ErrInvalidRate)
		_, err = tax.ExtractInclusive(nzd(t, "100.00"), rate, 2)
		require.ErrorIs(t, err, tax.ErrInvalidRate)
	}
	require.True(t, tax.ValidateRate(decimal.Zero))
	require.True(t, tax.ValidateRate(decimal.NewFromInt(100)))
	require.False(t, tax.ValidateRate(decimal.NewFromFloat(100.01)))
}

func TestBreakdownGroupsExemptFirst(t *testing.T) {
	lines := []tax.Line{
		{Taxable: nzd(t, "100.00"), Rate: decimal.NewFromInt(15)},
		{Taxable: nzd(t, "50.00"), Rate: decimal.NewFromInt(15), Exempt: true},
		{Taxable: nzd(t, "40.00"), Rate: decimal.NewFromInt(15)},
		{Taxable: nzd(t, "30.00"), Rate: decimal.NewFromInt(9)},
	}
	entries, err := tax.Breakdown(lines, 2)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.True(t, entries[0].Rate.IsZero())
	require.Equal(t, "50.00", entries[0].Taxable.StringFixed(2))
	require.Equal(t, "0.00", entries[0].Tax.StringFixed(2))

	require.Equal(t, "9", entries[1].Rate.String())
	require.Equal(t, "30.00", entries[1].Taxable.StringFixed(2))
	require.Equal(t, "2.70", entries[1].Tax.StringFixed(2))

	require.Equal(t, "15", entries[2].Rate.String())
	require.Equal(t, "140.00", entries[2].Taxable.StringFixed(2))
	require.Equal(t, "21.00", entries[2].Tax.StringFixed(2))
}

func TestBreakdownCurrencyMismatch(t *testing.T) {
	usd, err := money.FromString("10.00", "USD")
	require.NoError(t, err)
	lines := []tax.Line{
		{Taxable: nzd(t, "100.00"), Rate: decimal.NewFromInt(15)},
		{Taxable: usd, Rate: decimal.NewFromInt(15)},
	}
	_, err = tax.Breakdown(lines, 2)
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestBreakdownEmpty(t *testing.T) {
	_, err := tax.Breakdown(nil, 2)
	require.ErrorIs(t, err, money.ErrEmptyAmounts)
}

func TestTotalFromBreakdownMatchesLineTaxes(t *testing.T) {
	lines := []tax.Line{
		{Taxable: nzd(t, "100.00"), Rate: decimal.NewFromInt(15)},
		{Taxable: nzd(t, "50.00"), Rate: decimal.NewFromInt(15), Exempt: true},
		{Taxable: nzd(t, "80.00"), Rate: decimal.NewFromInt(9)},
	}
	entries, err := tax.Breakdown(lines, 2)
	require.NoError(t, err)

	total, err := tax.TotalFromBreakdown(entries, 2)
	require.NoError(t, err)

	perLine := money.Zero("NZD")
	for _, line := range lines {
		if line.Exempt {
			continue
		}
		res, err := tax.Calculate(line.Taxable, line.Rate, 2)
		require.NoError(t, err)
		perLine, err = perLine.Add(res.Tax, 2)
		require.NoError(t, err)
	}
	require.True(t, total.Equal(perLine), "breakdown total %s vs per-line %s", total, perLine)
}

func TestDefaultExemptionPolicy(t *testing.T) {
	require.True(t, tax.DefaultExemptionPolicy("travel"))
	require.True(t, tax.DefaultExemptionPolicy(" Mileage "))
	require.True(t, tax.DefaultExemptionPolicy("expenses"))
	require.False(t, tax.DefaultExemptionPolicy("consulting"))
	require.False(t, tax.NoExemptions("travel"))
}
