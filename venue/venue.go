// Package venue defines the capability interface the execution core consumes
// from the brokerage connection. Event-callback wiring, reconnects and
// market-data plumbing all live in an adapter outside this module; the core
// sees only the four operations it needs.
package venue

import (
	"context"

	"github.com/rustyeddy/execution/order"
)

// BracketRequest carries everything the venue needs to place a 3-leg bracket.
type BracketRequest struct {
	Symbol       string
	Action       order.Action
	OrderType    order.OrderType
	SecurityType string

	EntryPrice   float64
	StopLoss     float64
	ProfitTarget float64
	Quantity     float64

	RiskPerTrade float64
	RiskReward   float64
	TotalCapital float64
	Account      string
}

// WorkingOrder is the venue's view of a live order. ParentID is zero for the
// entry leg and set for child legs.
type WorkingOrder struct {
	ID       int64
	ParentID int64
	Symbol   string
	Action   order.Action
	Quantity float64
	// LimitPrice is the entry or take-profit price depending on the leg.
	LimitPrice float64
	// AuxPrice is the stop trigger for stop legs, zero otherwise.
	AuxPrice float64
}

// IsParent reports whether the working order is an entry leg.
func (w WorkingOrder) IsParent() bool { return w.ParentID == 0 }

// TransmissionStatus is the venue's per-parent confirmation that all bracket
// legs were transmitted.
type TransmissionStatus struct {
	Verified              bool
	ComponentsTransmitted bool
}

// Client is the minimal brokerage capability surface. PlaceBracketOrder must
// return the leg ids in parent, take-profit, stop-loss sequence; any other
// shape is treated as a partial bracket by the caller.
type Client interface {
	PlaceBracketOrder(ctx context.Context, req BracketRequest) ([]int64, error)
	CancelOrder(ctx context.Context, id int64) error
	OpenOrders(ctx context.Context) ([]WorkingOrder, error)
	Connected() bool
}

// TransmissionWaiter is an optional capability: venues that track per-leg
// transmission expose a bounded wait keyed by parent id. Whether a venue
// without this capability may skip verification is a configuration decision,
// not an implicit probe.
type TransmissionWaiter interface {
	WaitForTransmission(ctx context.Context, parentID int64) (TransmissionStatus, error)
}
