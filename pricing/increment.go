// Package pricing rounds order prices onto the venue's minimum price
// increments. The increment depends on the price tier, so a raw planned price
// is almost never submittable as-is.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/execution/order"
)

// Increment tiers follow the venue's rule book: sub-dollar prices tick in
// hundredths of a cent, prices under ten dollars in half cents, everything
// else in whole cents.
func Increment(price float64) decimal.Decimal {
	switch {
	case price < 1:
		return decimal.RequireFromString("0.0001")
	case price < 10:
		return decimal.RequireFromString("0.005")
	default:
		return decimal.RequireFromString("0.01")
	}
}

// Round snaps a price to the nearest valid increment. Used for entries and
// stops, where either direction is acceptable and the deviation is at most
// half an increment.
func Round(price float64) float64 {
	if price <= 0 {
		return price
	}
	inc := Increment(price)
	d := decimal.NewFromFloat(price)
	steps := d.Div(inc).Round(0)
	out, _ := steps.Mul(inc).Float64()
	return out
}

// RoundUp snaps a price to the next valid increment away from zero. Profit
// targets round up so the submitted target is never worse than the planned
// risk/reward.
func RoundUp(price float64) float64 {
	if price <= 0 {
		return price
	}
	inc := Increment(price)
	d := decimal.NewFromFloat(price)
	steps := d.Div(inc)
	ceil := steps.Ceil()
	out, _ := ceil.Mul(inc).Float64()
	return out
}

// ProfitTarget derives the profit target for a planned order and rounds it
// up onto the increment grid. Targets never round down.
func ProfitTarget(o order.PlannedOrder) float64 {
	return RoundUp(order.RawProfitTarget(o))
}

// WithinOneIncrement reports whether a rounded price deviates from the raw
// price by at most one increment. Sanity guard used by tests and the
// executor's pre-submission check.
func WithinOneIncrement(raw, rounded float64) bool {
	inc, _ := Increment(raw).Float64()
	return math.Abs(raw-rounded) <= inc+1e-12
}
