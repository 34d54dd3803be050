// Package risk decides whether the system may trade at all, and whether one
// more order fits inside the promised loss and exposure limits. All state is
// held in an injected, mutex-guarded Engine constructed once per trading
// session; there is no ambient global.
package risk

import "time"

// Limits is the risk policy for a session.
type Limits struct {
	// Trailing realized-loss limits as a fraction of equity. Breaching any
	// of them halts trading.
	DailyLossPct   float64 `json:"daily_loss_pct" yaml:"daily_loss_pct"`
	WeeklyLossPct  float64 `json:"weekly_loss_pct" yaml:"weekly_loss_pct"`
	MonthlyLossPct float64 `json:"monthly_loss_pct" yaml:"monthly_loss_pct"`

	// MaxRiskPerTrade caps a plan's risk fraction. Orders above the cap are
	// clamped, never dropped.
	MaxRiskPerTrade float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`

	// Position limits apply to CORE and HYBRID strategies only.
	SingleTradePct   float64 `json:"single_trade_pct" yaml:"single_trade_pct"`
	TotalExposurePct float64 `json:"total_exposure_pct" yaml:"total_exposure_pct"`

	// CacheTTL is how long a halt evaluation stays fresh.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

func DefaultLimits() Limits {
	return Limits{
		DailyLossPct:     0.02,
		WeeklyLossPct:    0.05,
		MonthlyLossPct:   0.08,
		MaxRiskPerTrade:  0.02,
		SingleTradePct:   0.30,
		TotalExposurePct: 0.60,
		CacheTTL:         5 * time.Minute,
	}
}
