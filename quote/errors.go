package quote

import (
	"errors"
	"fmt"

	"github.com/noah-isme/pricing-core/discount"
	"github.com/noah-isme/pricing-core/money"
	"github.com/noah-isme/pricing-core/tax"
)

var (
	// ErrEmptyLineItems is returned when a calculation receives no line items.
	ErrEmptyLineItems = errors.New("at least one line item is required")
	// ErrInvalidLineItem is returned for a non-positive quantity or a
	// negative unit price.
	ErrInvalidLineItem = errors.New("invalid line item")
	// ErrSchema is returned when the input shape fails schema validation
	// before any calculation runs.
	ErrSchema = errors.New("schema validation failed")
)

// Error codes surfaced on the orchestrator boundary. Embedding route
// handlers map these to HTTP statuses without string matching.
const (
	CodeCurrencyMismatch  = "CURRENCY_MISMATCH"
	CodeInvalidTaxRate    = "INVALID_TAX_RATE"
	CodeInvalidLineItem   = "INVALID_LINE_ITEM"
	CodeInvalidDiscount   = "INVALID_DISCOUNT"
	CodeDivideByZero      = "DIVIDE_BY_ZERO"
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeSchemaValidation  = "SCHEMA_VALIDATION"
	CodeCalculationFailed = "CALCULATION_FAILED"
)

// Error is the single error type returned by Calculate and CalculateDebug.
// It wraps whichever pipeline failure occurred with a uniform message and a
// stable machine code.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapCalcError(err error) *Error {
	return &Error{
		Code:    codeFor(err),
		Message: fmt.Sprintf("quote calculation failed: %v", err),
		Err:     err,
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, money.ErrCurrencyMismatch):
		return CodeCurrencyMismatch
	case errors.Is(err, tax.ErrInvalidRate):
		return CodeInvalidTaxRate
	case errors.Is(err, ErrInvalidLineItem):
		return CodeInvalidLineItem
	case errors.Is(err, discount.ErrInvalidSpec), errors.Is(err, discount.ErrPerUnitScope):
		return CodeInvalidDiscount
	case errors.Is(err, money.ErrDivideByZero):
		return CodeDivideByZero
	case errors.Is(err, ErrEmptyLineItems), errors.Is(err, money.ErrEmptyAmounts):
		return CodeEmptyInput
	case errors.Is(err, ErrSchema):
		return CodeSchemaValidation
	default:
		return CodeCalculationFailed
	}
}
