// Package order defines the data model shared by the execution core: the
// immutable planned intent coming from upstream planning, the append-only
// attempt audit trail, and the live tracking record for a submitted bracket.
package order

import "time"

// Action is the trade direction.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Strategy classifies how long a position is intended to be held. CORE and
// HYBRID positions count against aggregate exposure limits; DAY positions do
// not.
type Strategy string

const (
	StrategyCore   Strategy = "CORE"
	StrategyHybrid Strategy = "HYBRID"
	StrategyDay    Strategy = "DAY"
)

// OrderType mirrors the venue's order-type vocabulary.
type OrderType string

const (
	TypeLimit  OrderType = "LMT"
	TypeMarket OrderType = "MKT"
	TypeStop   OrderType = "STP"
)

// PlannedOrder is an immutable trade intent created upstream. The execution
// core reads it, sizes it and places it; it never changes the plan itself,
// with one documented exception: the risk engine may cap RiskPerTrade to the
// configured maximum before sizing.
type PlannedOrder struct {
	Symbol       string
	Action       Action
	OrderType    OrderType
	SecurityType string

	EntryPrice float64
	StopLoss   float64 // 0 means no stop attached

	// RiskPerTrade is the fraction of capital put at risk if the stop is
	// hit, e.g. 0.01 for 1%.
	RiskPerTrade float64
	// RiskReward is the ratio of profit-target distance to stop distance.
	RiskReward float64

	// Priority 1..5, lower is more urgent.
	Priority int

	Strategy Strategy

	// Setup and Timeframe are optional labels carried from the planning
	// layer; they feed scoring only.
	Setup     string
	Timeframe string
}

// HasStop reports whether the plan carries a stop-loss.
func (o PlannedOrder) HasStop() bool { return o.StopLoss > 0 }

// ActiveOrder tracks a bracket that has been submitted to the venue and is
// not yet terminal (filled, cancelled or liquidated). It is owned by the
// executor's book.
type ActiveOrder struct {
	Symbol   string
	Action   Action
	Entry    float64
	Stop     float64
	Quantity float64
	Strategy Strategy

	ParentID     int64
	TakeProfitID int64
	StopLossID   int64

	Status          AttemptStatus
	Commitment      float64
	FillProbability float64
	Account         string
	SubmitTime      time.Time
}
