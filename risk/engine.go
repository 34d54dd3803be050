package risk

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/execution/journal"
	"github.com/rustyeddy/execution/metrics"
	"github.com/rustyeddy/execution/order"
)

var (
	// ErrRiskHalted is returned when trading is suspended by a loss limit.
	ErrRiskHalted = errors.New("trading halted by risk engine")

	// ErrEquityInvalid marks an equity figure that could not be validated as
	// a positive number. The engine halts loudly on it; it never substitutes
	// a default.
	ErrEquityInvalid = errors.New("equity invalid or unavailable")
)

// EquityFunc supplies the current account equity. Any error, or a
// non-positive value, halts trading with ErrEquityInvalid.
type EquityFunc func() (float64, error)

// Engine evaluates halt state from realized P&L and gates every placement
// against per-trade and aggregate exposure caps. Evaluations are cached for
// Limits.CacheTTL; Refresh forces a fresh one.
type Engine struct {
	mu      sync.Mutex
	limits  Limits
	journal journal.Journal
	equity  EquityFunc
	log     *zap.Logger

	halted    bool
	reason    string
	lastCheck time.Time
}

func NewEngine(limits Limits, j journal.Journal, equity EquityFunc, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if limits.CacheTTL <= 0 {
		limits.CacheTTL = DefaultLimits().CacheTTL
	}
	return &Engine{limits: limits, journal: j, equity: equity, log: log}
}

// Halted reports the current halt state, re-evaluating only when the cached
// result is stale. The returned reason is empty when trading is allowed.
func (e *Engine) Halted() (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.evaluateLocked(false)
	return e.halted, e.reason
}

// Refresh discards the cache and re-evaluates immediately.
func (e *Engine) Refresh() (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.evaluateLocked(true)
	return e.halted, e.reason
}

// Reset clears all cached state, as at the start of a new trading session.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.halted = false
	e.reason = ""
	e.lastCheck = time.Time{}
}

func (e *Engine) evaluateLocked(force bool) {
	if !force && !e.lastCheck.IsZero() && time.Since(e.lastCheck) < e.limits.CacheTTL {
		return
	}
	e.lastCheck = time.Now()

	equity, err := e.equity()
	if err != nil || equity <= 0 {
		e.halted = true
		e.reason = fmt.Sprintf("%v: equity=%.2f err=%v", ErrEquityInvalid, equity, err)
		e.log.Error("risk halt: equity could not be validated",
			zap.Float64("equity", equity), zap.Error(err))
		metrics.RiskHalts.WithLabelValues("equity").Inc()
		return
	}

	windows := []struct {
		days  int
		limit float64
		label string
	}{
		{1, e.limits.DailyLossPct, "Daily"},
		{7, e.limits.WeeklyLossPct, "Weekly"},
		{30, e.limits.MonthlyLossPct, "Monthly"},
	}

	for _, w := range windows {
		pnl, err := e.journal.RealizedPnLPeriod(w.days)
		if err != nil {
			// Unknown P&L means the loss limits cannot be verified. Treat it
			// the same as invalid equity: halt loudly.
			e.halted = true
			e.reason = fmt.Sprintf("realized P&L unavailable for %d-day window: %v", w.days, err)
			e.log.Error("risk halt: pnl query failed", zap.Int("days", w.days), zap.Error(err))
			metrics.RiskHalts.WithLabelValues("pnl_unavailable").Inc()
			return
		}

		loss := -pnl
		if loss < 0 {
			loss = 0
		}
		if loss/equity >= w.limit {
			e.halted = true
			e.reason = fmt.Sprintf("%s loss limit breached: lost %.2f (%.2f%%) of %.2f, limit %.2f%%",
				w.label, loss, 100*loss/equity, equity, 100*w.limit)
			e.log.Warn("risk halt",
				zap.String("window", w.label),
				zap.Float64("loss", loss),
				zap.Float64("equity", equity))
			metrics.RiskHalts.WithLabelValues(strings.ToLower(w.label)).Inc()
			return
		}
	}

	if e.halted {
		e.log.Info("risk halt cleared", zap.String("previous", e.reason))
	}
	e.halted = false
	e.reason = ""
}

// CanPlaceOrder gates one placement. It returns false immediately when
// halted. Otherwise it clamps the plan's risk fraction to the configured
// maximum (mutating the order, never dropping it) and, for CORE and HYBRID
// strategies, enforces the single-trade and aggregate exposure caps against
// the current working set.
func (e *Engine) CanPlaceOrder(o *order.PlannedOrder, active []order.ActiveOrder, totalCapital float64) (bool, string) {
	if halted, reason := e.Halted(); halted {
		return false, reason
	}

	e.mu.Lock()
	limits := e.limits
	e.mu.Unlock()

	if o.RiskPerTrade > limits.MaxRiskPerTrade {
		e.log.Warn("risk per trade capped",
			zap.String("symbol", o.Symbol),
			zap.Float64("requested", o.RiskPerTrade),
			zap.Float64("cap", limits.MaxRiskPerTrade))
		o.RiskPerTrade = limits.MaxRiskPerTrade
	}

	if o.Strategy != order.StrategyCore && o.Strategy != order.StrategyHybrid {
		return true, ""
	}

	qty, commitment := Size(*o, totalCapital)
	if qty <= 0 {
		return false, fmt.Sprintf("cannot size %s: entry %.4f stop %.4f", o.Symbol, o.EntryPrice, o.StopLoss)
	}
	if commitment > limits.SingleTradePct*totalCapital {
		return false, fmt.Sprintf("single trade value %.2f exceeds %.0f%% of capital %.2f",
			commitment, 100*limits.SingleTradePct, totalCapital)
	}

	var existing float64
	for _, a := range active {
		if a.Strategy == order.StrategyCore || a.Strategy == order.StrategyHybrid {
			existing += a.Commitment
		}
	}
	if existing+commitment > limits.TotalExposurePct*totalCapital {
		return false, fmt.Sprintf("total exposure %.2f would exceed %.0f%% of capital %.2f",
			existing+commitment, 100*limits.TotalExposurePct, totalCapital)
	}

	return true, ""
}

// RecordTradeOutcome appends a realized P&L record. Accounting is
// best-effort: failures are logged and swallowed so a journal fault never
// stops trading.
func (e *Engine) RecordTradeOutcome(o order.PlannedOrder, orderID string, pnl float64, account string) {
	err := e.journal.RecordRealizedPnL(journal.PnLRecord{
		OrderID:  orderID,
		Symbol:   o.Symbol,
		PnL:      pnl,
		ExitDate: time.Now().UTC(),
		Account:  account,
	})
	if err != nil {
		e.log.Error("record trade outcome failed",
			zap.String("symbol", o.Symbol),
			zap.Float64("pnl", pnl),
			zap.Error(err))
	}
}
