package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrValidation marks field or profit-target failures. These are local,
	// never retried, and always journaled as a REJECTED attempt.
	ErrValidation = errors.New("order validation failed")

	// ErrPartialBracket marks a venue result with the wrong leg count or a
	// non-sequential id set. The caller rolls back whatever legs exist.
	ErrPartialBracket = errors.New("partial bracket")
)

// minStopDistancePct is the minimum relative distance between entry and stop
// (and entry and target). Anything tighter produces profit targets inside the
// venue's increment noise.
const minStopDistancePct = 0.001

// Validate runs the basic field checks on a planned order. It returns the
// first failure wrapped in ErrValidation.
func Validate(o PlannedOrder) error {
	sym := strings.TrimSpace(o.Symbol)
	if sym == "" || strings.EqualFold(sym, "unknown") || strings.EqualFold(sym, "n/a") {
		return fmt.Errorf("%w: missing or sentinel symbol %q", ErrValidation, o.Symbol)
	}
	if o.Action != Buy && o.Action != Sell {
		return fmt.Errorf("%w: action must be BUY or SELL, got %q", ErrValidation, o.Action)
	}
	if o.EntryPrice <= 0 {
		return fmt.Errorf("%w: entry price must be positive, got %v", ErrValidation, o.EntryPrice)
	}
	if o.StopLoss < 0 {
		return fmt.Errorf("%w: stop loss must be positive when set, got %v", ErrValidation, o.StopLoss)
	}
	return nil
}

// ValidateProfitTarget checks that the risk/reward math produces a usable
// profit target: positive ratio, a stop far enough from entry, and a derived
// target that is positive and at least the minimum distance from entry.
func ValidateProfitTarget(o PlannedOrder) error {
	if o.RiskReward <= 0 {
		return fmt.Errorf("%w: risk/reward must be positive, got %v", ErrValidation, o.RiskReward)
	}
	if !o.HasStop() {
		return fmt.Errorf("%w: profit target requires a stop loss", ErrValidation)
	}
	stopDist := math.Abs(o.EntryPrice - o.StopLoss)
	if stopDist/o.EntryPrice < minStopDistancePct {
		return fmt.Errorf("%w: stop %.4f too close to entry %.4f (min %.1f%%)",
			ErrValidation, o.StopLoss, o.EntryPrice, minStopDistancePct*100)
	}

	target := RawProfitTarget(o)
	if target <= 0 {
		return fmt.Errorf("%w: derived profit target %.4f not positive", ErrValidation, target)
	}
	if math.Abs(target-o.EntryPrice)/o.EntryPrice < minStopDistancePct {
		return fmt.Errorf("%w: profit target %.4f too close to entry %.4f", ErrValidation, target, o.EntryPrice)
	}
	return nil
}

// RawProfitTarget derives the unrounded profit target from entry, stop and
// the risk/reward ratio. Buys target above entry, sells below.
func RawProfitTarget(o PlannedOrder) float64 {
	stopDist := math.Abs(o.EntryPrice - o.StopLoss)
	reward := stopDist * o.RiskReward
	if o.Action == Sell {
		return o.EntryPrice - reward
	}
	return o.EntryPrice + reward
}
