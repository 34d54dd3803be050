package order

import "fmt"

// BracketComponents is the id triple returned by the venue for a bracket
// placement. The venue assigns ids in sequence: take-profit is parent+1,
// stop-loss is parent+2. Anything else means the bracket is incomplete and
// must be rolled back.
type BracketComponents struct {
	ParentID     int64
	TakeProfitID int64
	StopLossID   int64

	ParentTransmitted     bool
	TakeProfitTransmitted bool
	StopLossTransmitted   bool
}

// NewBracketComponents validates a raw id slice from the venue. It returns an
// error for any shape other than exactly three sequential ids.
func NewBracketComponents(ids []int64) (BracketComponents, error) {
	if len(ids) != 3 {
		return BracketComponents{}, fmt.Errorf("bracket returned %d ids, want 3: %w", len(ids), ErrPartialBracket)
	}
	if ids[1] != ids[0]+1 || ids[2] != ids[0]+2 {
		return BracketComponents{}, fmt.Errorf("bracket ids %v not sequential: %w", ids, ErrPartialBracket)
	}
	return BracketComponents{ParentID: ids[0], TakeProfitID: ids[1], StopLossID: ids[2]}, nil
}

// AllTransmitted reports whether every leg has been confirmed by the venue.
func (b BracketComponents) AllTransmitted() bool {
	return b.ParentTransmitted && b.TakeProfitTransmitted && b.StopLossTransmitted
}

// IDs returns the leg ids in parent, take-profit, stop-loss order.
func (b BracketComponents) IDs() []int64 {
	return []int64{b.ParentID, b.TakeProfitID, b.StopLossID}
}

// MissingLeg names the leg most likely absent from an incomplete id set. A
// two-id result usually dropped the take-profit: if parent+1 is present the
// missing id is the stop-loss, otherwise the take-profit.
func MissingLeg(ids []int64) string {
	switch len(ids) {
	case 0:
		return "all legs"
	case 1:
		return "take-profit and stop-loss"
	case 2:
		if ids[1] == ids[0]+1 {
			return "stop-loss"
		}
		return "take-profit"
	default:
		return "unknown leg"
	}
}
