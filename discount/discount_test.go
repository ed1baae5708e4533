package discount_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-core/discount"
	"github.com/noah-isme/pricing-core/money"
)

func nzd(t *testing.T, value string) money.Money {
	t.Helper()
	m, err := money.FromString(value, "NZD")
	require.NoError(t, err)
	return m
}

func TestPercentage(t *testing.T) {
	res, err := discount.Apply(nzd(t, "200.00"), discount.Spec{
		Kind:  discount.KindPercentage,
		Value: decimal.NewFromInt(10),
	}, 2)
	require.NoError(t, err)
	require.Equal(t, "20.00", res.Discount.StringFixed(2))
	require.Equal(t, "180.00", res.Final.StringFixed(2))
}

func TestFixedAmountCappedAtBase(t *testing.T) {
	res, err := discount.Apply(nzd(t, "100.00"), discount.Spec{
		Kind:  discount.KindFixedAmount,
		Value: decimal.NewFromInt(150),
	}, 2)
	require.NoError(t, err)
	require.Equal(t, "100.00", res.Discount.StringFixed(2))
	require.Equal(t, "0.00", res.Final.StringFixed(2))
	require.False(t, res.Final.IsNegative())
}

func TestPerUnit(t *testing.T) {
	res, err := discount.ApplyWithQuantity(nzd(t, "100.00"), discount.Spec{
		Kind:  discount.KindPerUnit,
		Value: decimal.NewFromInt(5),
	}, decimal.NewFromInt(3), 2)
	require.NoError(t, err)
	require.Equal(t, "15.00", res.Discount.StringFixed(2))
	require.Equal(t, "85.00", res.Final.StringFixed(2))
}

func TestPerUnitRejectedWithoutQuantity(t *testing.T) {
	_, err := discount.Apply(nzd(t, "100.00"), discount.Spec{
		Kind:  discount.KindPerUnit,
		Value: decimal.NewFromInt(5),
	}, 2)
	require.ErrorIs(t, err, discount.ErrPerUnitScope)
}

func TestInvalidSpecs(t *testing.T) {
	cases := []discount.Spec{
		{Kind: discount.KindPercentage, Value: decimal.NewFromInt(101)},
		{Kind: discount.KindFixedAmount, Value: decimal.NewFromInt(-1)},
		{Kind: discount.Kind("bogus"), Value: decimal.NewFromInt(1)},
	}
	for _, spec := range cases {
		_, err := discount.Apply(nzd(t, "100.00"), spec, 2)
		require.ErrorIs(t, err, discount.ErrInvalidSpec, "spec %+v", spec)
	}
}

func TestChainCompounds(t *testing.T) {
	res, err := discount.ApplyChain(nzd(t, "200.00"), []discount.Spec{
		{Kind: discount.KindPercentage, Value: decimal.NewFromInt(10)},
		{Kind: discount.KindPercentage, Value: decimal.NewFromInt(10)},
	}, 2)
	require.NoError(t, err)
	// second 10% applies to the remaining 180.00, not the original base
	require.Equal(t, "38.00", res.Discount.StringFixed(2))
	require.Equal(t, "162.00", res.Final.StringFixed(2))
}

func TestChainNeverGoesNegative(t *testing.T) {
	res, err := discount.ApplyChain(nzd(t, "50.00"), []discount.Spec{
		{Kind: discount.KindFixedAmount, Value: decimal.NewFromInt(40)},
		{Kind: discount.KindFixedAmount, Value: decimal.NewFromInt(40)},
	}, 2)
	require.NoError(t, err)
	require.Equal(t, "50.00", res.Discount.StringFixed(2))
	require.True(t, res.Final.IsZero())
}
