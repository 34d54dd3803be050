// Package journal persists what the execution core did: every placement
// attempt, every confirmed execution and every realized P&L outcome. It also
// answers the two questions the core asks back: "is there margin for this
// order" and "how much did we lose over the last N days".
package journal

import (
	"time"

	"github.com/rustyeddy/execution/order"
)

// ExecutionRecord captures a confirmed bracket submission.
type ExecutionRecord struct {
	ExecutionID string
	Symbol      string
	Action      order.Action
	Quantity    float64
	EntryPrice  float64
	StopLoss    float64
	Target      float64
	Commitment  float64
	ParentID    int64
	Account     string
	Time        time.Time
}

// PnLRecord is one realized profit-or-loss entry from a closed position.
type PnLRecord struct {
	OrderID  string
	Symbol   string
	PnL      float64
	ExitDate time.Time
	Account  string
}

// Journal is the persistence collaborator consumed by the execution core.
//
// RecordOrderAttempt and RecordRealizedPnL are best-effort from the caller's
// point of view: the executor logs failures but never lets accounting stop
// trading.
type Journal interface {
	RecordOrderExecution(ExecutionRecord) (string, error)
	RecordOrderAttempt(order.ExecutionAttempt) error

	// ValidateSufficientMargin reports whether the account can carry the
	// order, with a human-readable reason on refusal.
	ValidateSufficientMargin(symbol string, qty, price float64) (bool, string)

	// RealizedPnLPeriod sums realized P&L over the trailing window.
	RealizedPnLPeriod(days int) (float64, error)
	RecordRealizedPnL(PnLRecord) error

	Close() error
}
