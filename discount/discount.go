// Package discount applies percentage, fixed-amount and per-unit discounts
// to a monetary base, alone or as a sequential chain.
package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/pricing-core/money"
)

// Kind identifies how a discount value is interpreted.
type Kind string

const (
	// KindPercentage applies value as a percentage (0–100) of the base.
	KindPercentage Kind = "percentage"
	// KindFixedAmount subtracts an absolute amount, capped at the base.
	KindFixedAmount Kind = "fixed_amount"
	// KindPerUnit multiplies value by quantity before subtracting.
	KindPerUnit Kind = "per_unit"
)

var (
	// ErrInvalidSpec is returned for unknown kinds or out-of-range values.
	ErrInvalidSpec = errors.New("invalid discount")
	// ErrPerUnitScope is returned when a per-unit discount is applied where
	// no quantity exists, such as the quote level. The semantics would be
	// undefined, so the call fails instead of guessing.
	ErrPerUnitScope = errors.New("per-unit discount requires a quantity context")
)

var hundred = decimal.NewFromInt(100)

// Spec describes one discount to apply.
type Spec struct {
	Kind        Kind            `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description,omitempty"`
}

// Validate checks the spec shape without touching a base amount.
func (s Spec) Validate() error {
	if s.Value.IsNegative() {
		return fmt.Errorf("%w: value %s is negative", ErrInvalidSpec, s.Value)
	}
	switch s.Kind {
	case KindPercentage:
		if s.Value.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage %s exceeds 100", ErrInvalidSpec, s.Value)
		}
	case KindFixedAmount, KindPerUnit:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}
	return nil
}

// Result is the outcome of applying one discount or a chain of discounts.
type Result struct {
	Discount money.Money `json:"discountAmount"`
	Final    money.Money `json:"finalAmount"`
}

// Apply computes the discount against a base amount with no quantity context.
// Per-unit specs fail with ErrPerUnitScope. The discount never exceeds the
// base and the final amount is never negative.
func Apply(base money.Money, spec Spec, decimals int32) (Result, error) {
	if spec.Kind == KindPerUnit {
		return Result{}, ErrPerUnitScope
	}
	return ApplyWithQuantity(base, spec, decimal.Zero, decimals)
}

// ApplyWithQuantity computes the discount against a base amount. Quantity is
// only consulted for per-unit specs.
func ApplyWithQuantity(base money.Money, spec Spec, quantity decimal.Decimal, decimals int32) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, err
	}
	var amount money.Money
	switch spec.Kind {
	case KindPercentage:
		amount = base.Percent(spec.Value, decimals)
	case KindFixedAmount:
		amount = money.New(spec.Value, base.Currency).Round(decimals)
	case KindPerUnit:
		amount = money.New(spec.Value.Mul(quantity), base.Currency).Round(decimals)
	}
	return capToBase(base, amount, decimals)
}

// ApplyChain applies each discount in order, computing every subsequent spec
// against the amount remaining after the previous one. The cumulative
// discount compounds rather than stacking off the original base.
func ApplyChain(base money.Money, specs []Spec, decimals int32) (Result, error) {
	remaining := base.Round(decimals)
	total := money.Zero(base.Currency)
	for _, spec := range specs {
		step, err := Apply(remaining, spec, decimals)
		if err != nil {
			return Result{}, err
		}
		total, err = total.Add(step.Discount, decimals)
		if err != nil {
			return Result{}, err
		}
		remaining = step.Final
	}
	return Result{Discount: total, Final: remaining}, nil
}

func capToBase(base, amount money.Money, decimals int32) (Result, error) {
	cmp, err := amount.Cmp(base)
	if err != nil {
		return Result{}, err
	}
	if cmp > 0 {
		amount = base.Round(decimals)
	}
	final, err := base.Sub(amount, decimals)
	if err != nil {
		return Result{}, err
	}
	if final.IsNegative() {
		final = money.Zero(base.Currency)
	}
	return Result{Discount: amount, Final: final}, nil
}
