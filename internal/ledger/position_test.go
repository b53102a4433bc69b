package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestInflowThenSale(t *testing.T) {
	p, err := Position{}.Inflow(d("100"), d("10"))
	require.NoError(t, err)

	snap := p.Snapshot(decimal.Zero)
	assert.True(t, snap.AvailableStock.Equal(d("100")))
	assert.True(t, snap.AverageRate.Equal(d("10")))
	assert.True(t, snap.TotalValue.Equal(d("1000")))

	p, err = p.Outflow(d("30"))
	require.NoError(t, err)
	snap = p.Snapshot(decimal.Zero)
	assert.True(t, snap.AvailableStock.Equal(d("70")))
	assert.True(t, snap.AverageRate.Equal(d("10")), "outflow must not move the average")
	assert.True(t, snap.TotalValue.Equal(d("700")))
}

func TestAverageRateLaw(t *testing.T) {
	p, _ := Position{}.Inflow(d("40"), d("5"))
	p, _ = p.Inflow(d("60"), d("7"))
	assert.True(t, p.AverageRate(decimal.Zero).Equal(d("6.2")))
}

func TestAverageRateIgnoresInterleavedOutflow(t *testing.T) {
	p, _ := Position{}.Inflow(d("40"), d("5"))
	p, err := p.Outflow(d("25"))
	require.NoError(t, err)
	p, _ = p.Inflow(d("60"), d("7"))

	assert.True(t, p.AverageRate(decimal.Zero).Equal(d("6.2")))
	assert.True(t, p.Available().Equal(d("75")))
}

func TestOutflowRejectsOversell(t *testing.T) {
	p, _ := Position{}.Inflow(d("50"), d("4"))
	after, err := p.Outflow(d("60"))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, p, after, "rejected outflow must leave the position untouched")
}

func TestOutflowExactBalanceAllowed(t *testing.T) {
	p, _ := Position{}.Inflow(d("12.5"), d("3"))
	p, err := p.Outflow(d("12.5"))
	require.NoError(t, err)
	assert.True(t, p.Available().IsZero())
	assert.True(t, p.TotalValue(decimal.Zero).IsZero())
}

func TestInflowValidation(t *testing.T) {
	_, err := Position{}.Inflow(decimal.Zero, d("1"))
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)

	_, err = Position{}.Inflow(d("-1"), d("1"))
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)

	_, err = Position{}.Inflow(d("1"), d("-0.01"))
	assert.ErrorIs(t, err, ErrNegativeRate)

	p, err := Position{}.Inflow(d("3"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, p.AverageRate(d("9")).IsZero(), "zero-rate inflow is real cost basis, not a fallback")
}

func TestEmptyPositionFallsBackToMarketRate(t *testing.T) {
	snap := Position{}.Snapshot(d("18.75"))
	assert.True(t, snap.AvailableStock.IsZero())
	assert.True(t, snap.AverageRate.Equal(d("18.75")))
	assert.True(t, snap.TotalValue.IsZero())
}

func TestRoundingOnlyAtSnapshot(t *testing.T) {
	// Three entries of 1 @ 0.333; rounding each entry's cost would give 0.99 total.
	p := Position{}
	for i := 0; i < 3; i++ {
		p, _ = p.Inflow(d("1"), d("0.333"))
	}
	assert.True(t, p.InflowCost.Equal(d("0.999")))
	assert.True(t, p.Snapshot(decimal.Zero).TotalValue.Equal(d("1")))
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(d("30"), d("12")).Equal(d("360")))
	assert.True(t, LineTotal(d("2.5"), d("3.333")).Equal(d("8.33")))
}

func TestFitsScale(t *testing.T) {
	assert.True(t, FitsScale(d("12")))
	assert.True(t, FitsScale(d("0.01")))
	assert.True(t, FitsScale(d("1.500")))
	assert.False(t, FitsScale(d("0.004")))
	assert.False(t, FitsScale(d("-1.005")))
}
