// Package money provides the currency-exact monetary value used across the
// pricing engine. Amounts are arbitrary-precision decimals paired with an
// ISO 4217 currency code; arithmetic between differing currencies always
// fails rather than coercing.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrCurrencyMismatch is returned when arithmetic combines two amounts
	// with different currency codes.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrDivideByZero is returned when dividing an amount by zero.
	ErrDivideByZero = errors.New("divide by zero")
	// ErrEmptyAmounts is returned when summing an empty slice.
	ErrEmptyAmounts = errors.New("no amounts to sum")
	// ErrInvalidAmount is returned when a string amount cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
)

// DefaultDecimals is the minor-unit precision used when the caller does not
// supply a currency-specific value (2 for NZD, USD and most fiat currencies).
const DefaultDecimals int32 = 2

// Money is an immutable monetary value: an exact decimal amount plus the
// ISO 4217 code of the currency it is denominated in.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New constructs a Money from an exact decimal amount.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: NormalizeCurrency(currency)}
}

// FromString parses a decimal string such as "123.45".
func FromString(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return New(d, currency), nil
}

// FromFloat converts a float64 into Money. Intended for boundary input only;
// all internal arithmetic stays decimal.
func FromFloat(value float64, currency string) Money {
	return New(decimal.NewFromFloat(value), currency)
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return New(decimal.Zero, currency)
}

// NormalizeCurrency canonicalizes a currency code to trimmed upper case, the
// form every constructor in this package stores. Callers comparing codes from
// untrusted input should normalize both sides first.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Round returns the amount rounded half-up to the given number of decimal
// places. Exact midpoints round away from zero (10.005 at 2dp becomes 10.01),
// matching invoicing convention rather than banker's rounding.
func (m Money) Round(decimals int32) Money {
	return Money{Amount: m.Amount.Round(decimals), Currency: m.Currency}
}

// SameCurrency reports whether both amounts share one currency code.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

func (m Money) requireSameCurrency(other Money) error {
	if !m.SameCurrency(other) {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return nil
}

// Add returns m + other rounded to the given precision. Currencies must match.
func (m Money) Add(other Money, decimals int32) (Money, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return Money{}, err
	}
	return New(m.Amount.Add(other.Amount), m.Currency).Round(decimals), nil
}

// Sub returns m - other rounded to the given precision. Currencies must match.
func (m Money) Sub(other Money, decimals int32) (Money, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return Money{}, err
	}
	return New(m.Amount.Sub(other.Amount), m.Currency).Round(decimals), nil
}

// Mul returns m multiplied by a plain decimal factor, rounded.
func (m Money) Mul(factor decimal.Decimal, decimals int32) Money {
	return New(m.Amount.Mul(factor), m.Currency).Round(decimals)
}

// Div returns m divided by a plain decimal divisor, rounded. Dividing by zero
// fails explicitly instead of producing an infinity.
func (m Money) Div(divisor decimal.Decimal, decimals int32) (Money, error) {
	if divisor.IsZero() {
		return Money{}, fmt.Errorf("%w: %s / 0", ErrDivideByZero, m.Amount)
	}
	return New(m.Amount.Div(divisor), m.Currency).Round(decimals), nil
}

// Percent returns pct percent of the amount (amount * pct / 100), rounded.
func (m Money) Percent(pct decimal.Decimal, decimals int32) Money {
	return New(m.Amount.Mul(pct).Div(decimal.NewFromInt(100)), m.Currency).Round(decimals)
}

// Sum adds all amounts, failing on an empty slice or mixed currencies.
func Sum(amounts []Money, decimals int32) (Money, error) {
	if len(amounts) == 0 {
		return Money{}, ErrEmptyAmounts
	}
	total := amounts[0]
	for _, a := range amounts[1:] {
		next, err := total.Add(a, decimals)
		if err != nil {
			return Money{}, err
		}
		total = next
	}
	return total.Round(decimals), nil
}

// Cmp compares two amounts without rounding: -1 if m < other, 0 if equal,
// 1 if m > other. Currencies must match.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return 0, err
	}
	return m.Amount.Cmp(other.Amount), nil
}

// Equal reports whether both amounts have the same currency and exact value.
func (m Money) Equal(other Money) bool {
	return m.SameCurrency(other) && m.Amount.Equal(other.Amount)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// Convert multiplies the amount by an exchange rate supplied by the caller
// and re-denominates it in the target currency, rounded to that currency's
// own precision (0 for zero-decimal currencies such as JPY).
func Convert(m Money, targetCurrency string, rate decimal.Decimal, targetDecimals int32) Money {
	return New(m.Amount.Mul(rate), targetCurrency).Round(targetDecimals)
}

// StringFixed renders the amount with a fixed number of decimal places,
// without a currency symbol.
func (m Money) StringFixed(decimals int32) string {
	return m.Amount.StringFixed(decimals)
}

// String implements fmt.Stringer as "<amount> <currency>".
func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}
