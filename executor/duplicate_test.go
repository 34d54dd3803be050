package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/execution/journal"
	"github.com/rustyeddy/execution/order"
	"github.com/rustyeddy/execution/venue"
)

// fixedVenue serves a canned working-order set for duplicate-check tests.
type fixedVenue struct {
	orders []venue.WorkingOrder
	err    error
}

func (f *fixedVenue) PlaceBracketOrder(ctx context.Context, req venue.BracketRequest) ([]int64, error) {
	return nil, errors.New("not used")
}
func (f *fixedVenue) CancelOrder(ctx context.Context, id int64) error { return nil }
func (f *fixedVenue) OpenOrders(ctx context.Context) ([]venue.WorkingOrder, error) {
	return f.orders, f.err
}
func (f *fixedVenue) Connected() bool { return true }

func dupExecutor(v venue.Client) *Executor {
	return New(v, journal.NewMem(1e9), NewBook(), DefaultConfig(), nil)
}

func workingBracket(parent int64, symbol string, action order.Action, qty, entry, stop float64) []venue.WorkingOrder {
	exit := order.Sell
	if action == order.Sell {
		exit = order.Buy
	}
	return []venue.WorkingOrder{
		{ID: parent, Symbol: symbol, Action: action, Quantity: qty, LimitPrice: entry},
		{ID: parent + 1, ParentID: parent, Symbol: symbol, Action: exit, Quantity: qty, LimitPrice: entry * 1.04},
		{ID: parent + 2, ParentID: parent, Symbol: symbol, Action: exit, Quantity: qty, AuxPrice: stop},
	}
}

func dupPlan(symbol string, action order.Action, entry, stop float64) order.PlannedOrder {
	return order.PlannedOrder{
		Symbol: symbol, Action: action,
		EntryPrice: entry, StopLoss: stop,
		RiskPerTrade: 0.01, RiskReward: 2.0,
	}
}

func TestDuplicateCoreMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		working []venue.WorkingOrder
		plan    order.PlannedOrder
		qty     float64
		wantDup bool
	}{
		{
			name:    "exact_match",
			working: workingBracket(100, "AAPL", order.Buy, 200, 190.00, 186.20),
			plan:    dupPlan("AAPL", order.Buy, 190.00, 186.20),
			qty:     200,
			wantDup: true,
		},
		{
			name:    "within_all_tolerances",
			working: workingBracket(100, "AAPL", order.Buy, 200, 190.00, 186.20),
			plan:    dupPlan("AAPL", order.Buy, 191.50, 187.50), // entry 0.79%, stop 0.70%
			qty:     208,                                        // 4%
			wantDup: true,
		},
		{
			name:    "different_symbol",
			working: workingBracket(100, "AAPL", order.Buy, 200, 190.00, 186.20),
			plan:    dupPlan("MSFT", order.Buy, 190.00, 186.20),
			qty:     200,
			wantDup: false,
		},
		{
			name:    "opposite_action",
			working: workingBracket(100, "AAPL", order.Buy, 200, 190.00, 186.20),
			plan:    dupPlan("AAPL", order.Sell, 190.00, 193.80),
			qty:     200,
			wantDup: false,
		},
		{
			name:    "quantity_outside_tolerance",
			working: workingBracket(100, "AAPL", order.Buy, 200, 190.00, 186.20),
			plan:    dupPlan("AAPL", order.Buy, 190.00, 186.20),
			qty:     230, // 13%
			wantDup: false,
		},
		{
			name:    "entry_outside_tolerance",
			working: workingBracket(100, "AAPL", order.Buy, 200, 190.00, 186.20),
			plan:    dupPlan("AAPL", order.Buy, 195.00, 186.20), // 2.6%
			qty:     200,
			wantDup: false,
		},
		{
			name:    "stop_outside_tolerance",
			working: workingBracket(100, "AAPL", order.Buy, 200, 190.00, 186.20),
			plan:    dupPlan("AAPL", order.Buy, 190.00, 181.00), // 2.8% off
			qty:     200,
			wantDup: false,
		},
		{
			name: "partial_bracket_entry_only",
			// Parentless entry with no children in flight yet: still a
			// duplicate on the entry-side core match alone.
			working: []venue.WorkingOrder{
				{ID: 100, Symbol: "AAPL", Action: order.Buy, Quantity: 200, LimitPrice: 190.00},
			},
			plan:    dupPlan("AAPL", order.Buy, 190.00, 186.20),
			qty:     200,
			wantDup: true,
		},
		{
			name: "partial_bracket_entry_plus_stop_leg",
			working: []venue.WorkingOrder{
				{ID: 100, Symbol: "AAPL", Action: order.Buy, Quantity: 200, LimitPrice: 190.00},
				{ID: 102, ParentID: 100, Symbol: "AAPL", Action: order.Sell, Quantity: 200, AuxPrice: 186.20},
			},
			plan:    dupPlan("AAPL", order.Buy, 190.00, 186.20),
			qty:     200,
			wantDup: true,
		},
		{
			name:    "no_working_orders",
			working: nil,
			plan:    dupPlan("AAPL", order.Buy, 190.00, 186.20),
			qty:     200,
			wantDup: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			x := dupExecutor(&fixedVenue{orders: tt.working})
			m := x.duplicateCheck(context.Background(), tt.plan, tt.qty)
			if tt.wantDup {
				require.NotNil(t, m)
				assert.Contains(t, m.Reason, "duplicates working order")
			} else {
				assert.Nil(t, m)
			}
		})
	}
}

func TestDuplicateCheckFailsOpen(t *testing.T) {
	t.Parallel()

	x := dupExecutor(&fixedVenue{err: errors.New("venue briefly unavailable")})

	m := x.duplicateCheck(context.Background(), dupPlan("AAPL", order.Buy, 190.00, 186.20), 200)
	assert.Nil(t, m, "a transient venue fault must not starve execution")
}

func TestWithinPct(t *testing.T) {
	t.Parallel()

	assert.True(t, withinPct(100, 100, 0.01))
	assert.True(t, withinPct(100, 100.9, 0.01))
	assert.False(t, withinPct(100, 102, 0.01))
	assert.True(t, withinPct(0, 0, 0.01))
	assert.True(t, withinPct(200, 208, 0.05))
	assert.False(t, withinPct(200, 230, 0.05))
}
