// Package sim provides an in-memory venue used by tests and the demo
// session. It assigns sequential ids the way the real venue does and can
// inject the failure modes the executor must survive: short id sets,
// transmission timeouts and disconnects.
package sim

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rustyeddy/execution/order"
	"github.com/rustyeddy/execution/venue"
)

// Faults selects which failure modes the engine injects. Zero value means a
// well-behaved venue.
type Faults struct {
	// ShortBracket drops legs from placement results: 0 disabled, otherwise
	// the number of ids to return (1 or 2).
	ShortBracket int
	// FailTransmission makes WaitForTransmission report unverified legs.
	FailTransmission bool
	// Disconnected makes the engine report no connectivity.
	Disconnected bool
	// CancelErrors makes CancelOrder fail, to exercise rollback logging.
	CancelErrors bool
}

type Engine struct {
	mu     sync.Mutex
	nextID int64
	open   map[int64]venue.WorkingOrder
	faults Faults
	log    *zap.Logger

	// transmitted tracks which parents have fully transmitted brackets.
	transmitted map[int64]bool
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		nextID:      1000,
		open:        make(map[int64]venue.WorkingOrder),
		transmitted: make(map[int64]bool),
		log:         log,
	}
}

// SetFaults swaps the active fault set. Safe to call between placements.
func (e *Engine) SetFaults(f Faults) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.faults = f
}

func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.faults.Disconnected
}

func (e *Engine) PlaceBracketOrder(ctx context.Context, req venue.BracketRequest) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	parent := e.nextID
	e.nextID += 3

	ids := []int64{parent, parent + 1, parent + 2}
	if n := e.faults.ShortBracket; n > 0 && n < 3 {
		// The venue still books the legs it acknowledged.
		ids = ids[:n]
	}

	exitAction := order.Sell
	if req.Action == order.Sell {
		exitAction = order.Buy
	}
	for i, id := range ids {
		w := venue.WorkingOrder{ID: id, Symbol: req.Symbol, Quantity: req.Quantity}
		switch i {
		case 0:
			w.Action = req.Action
			w.LimitPrice = req.EntryPrice
		case 1:
			w.ParentID = parent
			w.Action = exitAction
			w.LimitPrice = req.ProfitTarget
		case 2:
			w.ParentID = parent
			w.Action = exitAction
			w.AuxPrice = req.StopLoss
		}
		e.open[id] = w
	}

	e.transmitted[parent] = len(ids) == 3 && !e.faults.FailTransmission

	e.log.Debug("sim venue placed bracket",
		zap.String("symbol", req.Symbol),
		zap.Int64s("ids", ids))
	return ids, nil
}

func (e *Engine) CancelOrder(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.faults.CancelErrors {
		return fmt.Errorf("sim venue: cancel %d refused", id)
	}
	if _, ok := e.open[id]; !ok {
		return fmt.Errorf("sim venue: order %d not found", id)
	}
	delete(e.open, id)
	return nil
}

func (e *Engine) OpenOrders(ctx context.Context) ([]venue.WorkingOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]venue.WorkingOrder, 0, len(e.open))
	for _, w := range e.open {
		out = append(out, w)
	}
	return out, nil
}

// WaitForTransmission reports the transmission state recorded at placement.
// The in-memory venue confirms synchronously, so there is nothing to block
// on beyond context cancellation.
func (e *Engine) WaitForTransmission(ctx context.Context, parentID int64) (venue.TransmissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return venue.TransmissionStatus{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ok, known := e.transmitted[parentID]
	if !known {
		return venue.TransmissionStatus{}, fmt.Errorf("sim venue: parent %d unknown", parentID)
	}
	return venue.TransmissionStatus{Verified: ok, ComponentsTransmitted: ok}, nil
}

// OpenCount returns the number of live orders, for test assertions.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.open)
}

var _ venue.Client = (*Engine)(nil)
var _ venue.TransmissionWaiter = (*Engine)(nil)
