// Package scoring turns planned orders into comparable numbers: normalized
// per-order features and the weighted scores the allocator ranks by.
package scoring

import (
	"github.com/rustyeddy/execution/order"
	"github.com/rustyeddy/execution/risk"
)

// SetupStats is the historical record for a named setup, supplied by the
// market-context collaborator.
type SetupStats struct {
	TotalTrades  int
	WinRate      float64
	ProfitFactor float64
}

// MarketContext is the optional collaborator answering symbol and setup
// history questions. A nil context disables the advanced features and the
// dependent components fall back to their neutral values.
type MarketContext interface {
	DominantTimeframe(symbol string) (string, error)
	SetupPerformance(name string) (*SetupStats, error)
}

// Components are the per-order normalized features feeding both score modes.
type Components struct {
	Efficiency      float64
	TimeframeMatch  float64
	SetupBias       float64
	RiskRewardScore float64
	PriorityNorm    float64
	SizePref        float64
}

// Efficiency is expected profit per committed dollar. Any missing or invalid
// input yields zero rather than an error: an unscorable candidate simply
// ranks at the bottom.
func Efficiency(o order.PlannedOrder, qty, commitment float64) float64 {
	if qty <= 0 || commitment <= 0 {
		return 0
	}
	profit := risk.ExpectedProfit(o, qty)
	if profit <= 0 {
		return 0
	}
	return profit / commitment
}

// PriorityNorm maps priority 1..5 (lower is more urgent) onto (0,1], so
// priority 1 scores 1.0 and priority 5 scores 0.2.
func PriorityNorm(priority int) float64 {
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}
	return float64(6-priority) / 5
}

// SizePref favors smaller commitments: 1 minus the fraction of capital the
// order ties up.
func SizePref(commitment, totalCapital float64) float64 {
	if totalCapital <= 0 || commitment <= 0 {
		return 0
	}
	v := 1 - commitment/totalCapital
	if v < 0 {
		return 0
	}
	return v
}

// RiskRewardScore rewards ratios above 1:1 with diminishing returns: the base
// grows a quarter point per unit of extra reward, capped at 1.2, and a decay
// factor floored at 0.6 tempers very aggressive ratios.
func RiskRewardScore(rr float64) float64 {
	if rr <= 0 {
		return 0
	}
	base := 0.5 + (rr-1)*0.25
	if base > 1.2 {
		base = 1.2
	}
	decay := 1 - (rr-1)*0.1
	if decay < 0.6 {
		decay = 0.6
	}
	return base * decay
}
