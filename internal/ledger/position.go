// Package ledger holds the stock accounting rules shared by the repository
// (which persists positions) and the services (which render them).
//
// A Position only ever accumulates: inflow quantity, outflow quantity and
// inflow cost. Everything else is derived, so averages never drift from
// rounding across many small entries.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveQuantity = errors.New("quantity must be greater than 0")
	ErrNegativeRate        = errors.New("rate must not be negative")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// DisplayPlaces is the precision of every quantity and amount shown to users.
const DisplayPlaces = 2

// Position is the accounting state of one ledger key.
type Position struct {
	TotalInflow  decimal.Decimal
	TotalOutflow decimal.Decimal
	InflowCost   decimal.Decimal
}

// Available is inflow minus outflow.
func (p Position) Available() decimal.Decimal {
	return p.TotalInflow.Sub(p.TotalOutflow)
}

// AverageRate is the weighted average inflow cost per unit. With no inflow
// yet the fallback (the category's market rate) is the cost basis.
func (p Position) AverageRate(fallback decimal.Decimal) decimal.Decimal {
	if !p.TotalInflow.IsPositive() {
		return fallback
	}
	return p.InflowCost.Div(p.TotalInflow)
}

// TotalValue is the available quantity valued at the average rate.
func (p Position) TotalValue(fallback decimal.Decimal) decimal.Decimal {
	return p.Available().Mul(p.AverageRate(fallback))
}

// Inflow returns the position after receiving quantity at rate.
func (p Position) Inflow(quantity, rate decimal.Decimal) (Position, error) {
	if !quantity.IsPositive() {
		return p, ErrNonPositiveQuantity
	}
	if rate.IsNegative() {
		return p, ErrNegativeRate
	}
	p.TotalInflow = p.TotalInflow.Add(quantity)
	p.InflowCost = p.InflowCost.Add(quantity.Mul(rate))
	return p, nil
}

// Outflow returns the position after removing quantity. It never touches
// InflowCost, so the average rate is unchanged by sales.
func (p Position) Outflow(quantity decimal.Decimal) (Position, error) {
	if !quantity.IsPositive() {
		return p, ErrNonPositiveQuantity
	}
	if p.Available().LessThan(quantity) {
		return p, ErrInsufficientStock
	}
	p.TotalOutflow = p.TotalOutflow.Add(quantity)
	return p, nil
}

// Snapshot is a Position rendered for display, rounded to DisplayPlaces.
type Snapshot struct {
	TotalInflow    decimal.Decimal
	TotalOutflow   decimal.Decimal
	AvailableStock decimal.Decimal
	AverageRate    decimal.Decimal
	TotalValue     decimal.Decimal
}

// Snapshot renders p. Rounding happens here and nowhere earlier.
func (p Position) Snapshot(fallback decimal.Decimal) Snapshot {
	return Snapshot{
		TotalInflow:    Round(p.TotalInflow),
		TotalOutflow:   Round(p.TotalOutflow),
		AvailableStock: Round(p.Available()),
		AverageRate:    Round(p.AverageRate(fallback)),
		TotalValue:     Round(p.TotalValue(fallback)),
	}
}

// Round rounds half away from zero to DisplayPlaces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// FitsScale reports whether d has no significant digits past DisplayPlaces.
// Entry and sale-line columns hold that many places; anything finer would be
// rounded there while the position keeps the exact value.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(DisplayPlaces))
}

// LineTotal is quantity × rate rounded for storage on entries and sale lines.
func LineTotal(quantity, rate decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(rate))
}
