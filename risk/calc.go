package risk

import (
	"math"

	"github.com/rustyeddy/execution/order"
)

// Size computes the share quantity and capital commitment for a planned
// order: risk the configured fraction of capital against the stop distance,
// then commit quantity times entry. Returns zeros when the plan cannot be
// sized (no stop, or stop on top of entry).
func Size(o order.PlannedOrder, totalCapital float64) (qty, commitment float64) {
	if totalCapital <= 0 || o.EntryPrice <= 0 || !o.HasStop() {
		return 0, 0
	}
	stopDist := math.Abs(o.EntryPrice - o.StopLoss)
	if stopDist == 0 {
		return 0, 0
	}

	riskAmt := totalCapital * o.RiskPerTrade
	qty = math.Floor(riskAmt / stopDist)
	if qty <= 0 {
		return 0, 0
	}
	return qty, qty * o.EntryPrice
}

// ExpectedProfit is the payoff if the profit target is hit: stop distance
// times the risk/reward ratio, per share.
func ExpectedProfit(o order.PlannedOrder, qty float64) float64 {
	if qty <= 0 || !o.HasStop() || o.RiskReward <= 0 {
		return 0
	}
	return qty * math.Abs(o.EntryPrice-o.StopLoss) * o.RiskReward
}
