package executor

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rustyeddy/execution/order"
	"github.com/rustyeddy/execution/venue"
)

// Tolerances for the core-match: two orders represent the same economic
// position when quantity is within 5% and prices within 1%.
const (
	qtyTolerance   = 0.05
	priceTolerance = 0.01
)

// DuplicateMatch describes why a candidate was classified as a duplicate.
type DuplicateMatch struct {
	ParentID int64
	Partial  bool
	Reason   string
}

// duplicateCheck classifies a candidate against the venue's working orders.
//
// A candidate is a duplicate when it core-matches a parentless working order
// for the symbol, or when a parentless entry plus a parented stop leg are
// both in flight and together core-match it (a partial bracket the venue has
// not finished acknowledging).
//
// On any internal error the check fails open: a transient venue fault must
// not starve execution, so the candidate is assumed clean and the fault is
// logged.
func (x *Executor) duplicateCheck(ctx context.Context, o order.PlannedOrder, qty float64) *DuplicateMatch {
	working, err := x.venue.OpenOrders(ctx)
	if err != nil {
		x.log.Warn("duplicate check failed open", zap.String("symbol", o.Symbol), zap.Error(err))
		return nil
	}

	var children []venue.WorkingOrder
	for _, w := range working {
		if w.Symbol == o.Symbol && !w.IsParent() {
			children = append(children, w)
		}
	}

	for _, w := range working {
		if w.Symbol != o.Symbol || !w.IsParent() {
			continue
		}
		if w.Action != o.Action {
			continue
		}
		if !withinPct(w.Quantity, qty, qtyTolerance) {
			continue
		}
		if !withinPct(w.LimitPrice, o.EntryPrice, priceTolerance) {
			continue
		}

		// Entry leg core-matches. If both sides carry a stop, it has to
		// agree too; the stop lives in a parented child leg.
		partial := false
		if o.HasStop() {
			stopLeg, ok := stopChild(children, w.ID)
			if ok {
				if !withinPct(stopLeg.AuxPrice, o.StopLoss, priceTolerance) {
					continue
				}
				partial = true
			}
		}

		return &DuplicateMatch{
			ParentID: w.ID,
			Partial:  partial,
			Reason: fmt.Sprintf("duplicates working order %d (%s %s %.0f @ %.4f)",
				w.ID, w.Action, w.Symbol, w.Quantity, w.LimitPrice),
		}
	}
	return nil
}

func stopChild(children []venue.WorkingOrder, parentID int64) (venue.WorkingOrder, bool) {
	for _, c := range children {
		if c.ParentID == parentID && c.AuxPrice > 0 {
			return c, true
		}
	}
	return venue.WorkingOrder{}, false
}

func withinPct(a, b, tol float64) bool {
	if a == b {
		return true
	}
	base := math.Max(math.Abs(a), math.Abs(b))
	if base == 0 {
		return true
	}
	return math.Abs(a-b)/base <= tol
}
