package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rustyeddy/execution/journal"
	"github.com/rustyeddy/execution/order"
)

func fixedEquity(v float64) EquityFunc {
	return func() (float64, error) { return v, nil }
}

func corePlan(symbol string, entry, stop float64) order.PlannedOrder {
	return order.PlannedOrder{
		Symbol:       symbol,
		Action:       order.Buy,
		EntryPrice:   entry,
		StopLoss:     stop,
		RiskPerTrade: 0.01,
		RiskReward:   2.0,
		Priority:     3,
		Strategy:     order.StrategyCore,
	}
}

func TestDailyLossLimitHalts(t *testing.T) {
	t.Parallel()

	j := journal.NewMem(1e9)
	require.NoError(t, j.RecordRealizedPnL(journal.PnLRecord{
		OrderID: "t1", Symbol: "AAPL", PnL: -2500, ExitDate: time.Now().UTC(),
	}))

	e := NewEngine(DefaultLimits(), j, fixedEquity(100000), zap.NewNop())

	halted, reason := e.Halted()
	assert.True(t, halted)
	assert.Contains(t, reason, "Daily loss limit")

	ok, msg := e.CanPlaceOrder(&order.PlannedOrder{Symbol: "AAPL"}, nil, 100000)
	assert.False(t, ok)
	assert.Contains(t, msg, "Daily loss limit")
}

func TestHaltStickinessWithinCache(t *testing.T) {
	t.Parallel()

	j := journal.NewMem(1e9)
	require.NoError(t, j.RecordRealizedPnL(journal.PnLRecord{
		OrderID: "t1", Symbol: "AAPL", PnL: -2500, ExitDate: time.Now().UTC(),
	}))

	equityCalls := 0
	e := NewEngine(DefaultLimits(), j, func() (float64, error) {
		equityCalls++
		return 100000, nil
	}, nil)

	halted, _ := e.Halted()
	assert.True(t, halted)

	// Loss disappears, but the cached evaluation must stand: no re-query of
	// equity or P&L inside the cache window.
	j.PnL = nil
	halted, _ = e.Halted()
	assert.True(t, halted)
	assert.Equal(t, 1, equityCalls)

	// A forced refresh re-evaluates and clears.
	halted, reason := e.Refresh()
	assert.False(t, halted)
	assert.Empty(t, reason)
	assert.Equal(t, 2, equityCalls)
}

func TestEquityInvalidHaltsLoudly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		equity EquityFunc
	}{
		{"zero_equity", fixedEquity(0)},
		{"negative_equity", fixedEquity(-5000)},
		{"equity_error", func() (float64, error) { return 0, errors.New("account feed down") }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(DefaultLimits(), journal.NewMem(1e9), tt.equity, nil)
			halted, reason := e.Halted()
			assert.True(t, halted)
			assert.Contains(t, reason, ErrEquityInvalid.Error())
		})
	}
}

func TestWindowOrderFirstBreachWins(t *testing.T) {
	t.Parallel()

	j := journal.NewMem(1e9)
	// An 8-day-old loss breaches monthly (8%) and weekly (5%) but not daily.
	require.NoError(t, j.RecordRealizedPnL(journal.PnLRecord{
		OrderID: "t1", Symbol: "MSFT", PnL: -9000,
		ExitDate: time.Now().UTC().AddDate(0, 0, -8),
	}))

	e := NewEngine(DefaultLimits(), j, fixedEquity(100000), nil)
	halted, reason := e.Halted()
	assert.True(t, halted)
	assert.Contains(t, reason, "Monthly loss limit")
}

func TestCanPlaceOrderCapsRiskPerTrade(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultLimits(), journal.NewMem(1e9), fixedEquity(100000), nil)

	// Wide stop keeps the capped size inside the exposure limits: 2% of
	// 100k over a $10 stop is 200 shares, a $20,000 commitment.
	o := corePlan("AAPL", 100, 90)
	o.RiskPerTrade = 0.10 // way over the 2% cap

	ok, reason := e.CanPlaceOrder(&o, nil, 100000)
	assert.True(t, ok, reason)
	assert.InDelta(t, 0.02, o.RiskPerTrade, 1e-12, "risk must be capped, not dropped")
}

func TestCanPlaceOrderSingleTradeLimit(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultLimits(), journal.NewMem(1e9), fixedEquity(100000), nil)

	// Tight stop forces a huge position: risk 1% of 100k = $1000 over a
	// $0.10 stop is 10,000 shares at $500 = $5M commitment.
	o := corePlan("NVDA", 500, 499.90)
	ok, msg := e.CanPlaceOrder(&o, nil, 100000)
	assert.False(t, ok)
	assert.Contains(t, msg, "single trade value")
}

func TestCanPlaceOrderTotalExposureLimit(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultLimits(), journal.NewMem(1e9), fixedEquity(100000), nil)

	active := []order.ActiveOrder{
		{Symbol: "MSFT", Strategy: order.StrategyCore, Commitment: 30000},
		{Symbol: "AMD", Strategy: order.StrategyHybrid, Commitment: 25000},
		{Symbol: "SPY", Strategy: order.StrategyDay, Commitment: 50000}, // DAY does not count
	}

	// qty = 1000/5 = 200 shares at $100 = $20,000; 55k + 20k > 60k cap.
	o := corePlan("AAPL", 100, 95)
	ok, msg := e.CanPlaceOrder(&o, active, 100000)
	assert.False(t, ok)
	assert.Contains(t, msg, "total exposure")

	// A DAY order ignores the exposure caps entirely.
	day := corePlan("AAPL", 100, 95)
	day.Strategy = order.StrategyDay
	ok, _ = e.CanPlaceOrder(&day, active, 100000)
	assert.True(t, ok)
}

func TestRecordTradeOutcomeBestEffort(t *testing.T) {
	t.Parallel()

	j := journal.NewMem(1e9)
	j.FailPnL = true
	e := NewEngine(DefaultLimits(), j, fixedEquity(100000), nil)

	// Must not panic or surface the journal fault.
	e.RecordTradeOutcome(corePlan("AAPL", 100, 98), "oid-1", -120.50, "ACC-1")
	assert.Empty(t, j.PnL)
}

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		order          order.PlannedOrder
		capital        float64
		wantQty        float64
		wantCommitment float64
	}{
		{
			name:           "basic",
			order:          corePlan("AAPL", 100, 98),
			capital:        100000,
			wantQty:        500, // 1000 risk / 2.00 stop distance
			wantCommitment: 50000,
		},
		{
			name:    "no_stop",
			order:   order.PlannedOrder{Symbol: "AAPL", EntryPrice: 100, RiskPerTrade: 0.01},
			capital: 100000,
		},
		{
			name:    "zero_capital",
			order:   corePlan("AAPL", 100, 98),
			capital: 0,
		},
		{
			name:    "stop_distance_rounds_qty_down",
			order:   corePlan("XOM", 110, 107),
			capital: 100000,
			// 1000 / 3 = 333.33 -> 333 shares
			wantQty:        333,
			wantCommitment: 36630,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			qty, commitment := Size(tt.order, tt.capital)
			assert.InDelta(t, tt.wantQty, qty, 1e-9)
			assert.InDelta(t, tt.wantCommitment, commitment, 1e-6)
		})
	}
}
