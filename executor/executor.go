// Package executor implements the bracket execution protocol: validate a
// planned order, submit the 3-leg bracket, verify the venue transmitted every
// leg, and roll back whatever partial state a failed placement left behind.
// The venue is asynchronous and only partially observable, so the protocol is
// built around one rule: never leave an unaccounted leg working at the venue,
// and never duplicate an economic position.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/execution/journal"
	"github.com/rustyeddy/execution/metrics"
	"github.com/rustyeddy/execution/order"
	"github.com/rustyeddy/execution/pkg/id"
	"github.com/rustyeddy/execution/pricing"
	"github.com/rustyeddy/execution/venue"
)

var (
	// ErrNotConnected surfaces venue connectivity loss. Retrying is the
	// caller's decision.
	ErrNotConnected = errors.New("venue not connected")

	// ErrDuplicate marks a candidate that matches a working order. A
	// rejection, not a fault.
	ErrDuplicate = errors.New("duplicate order")

	// ErrRapidRetry marks a candidate whose symbol was submitted moments
	// ago and is still settling.
	ErrRapidRetry = errors.New("recent submission for symbol still settling")

	// ErrMargin carries the collaborator-supplied margin refusal.
	ErrMargin = errors.New("insufficient margin")

	// ErrTransmission marks a bracket whose legs were never confirmed
	// transmitted within the bounded wait.
	ErrTransmission = errors.New("bracket transmission unverified")
)

// Config tunes the protocol's timing and trust decisions.
type Config struct {
	// TransmissionTimeout bounds the wait for per-leg transmission
	// confirmation after placement.
	TransmissionTimeout time.Duration

	// RequireTransmissionVerification decides what happens when the venue
	// offers no transmission tracking: true fails the placement, false
	// proceeds and logs the trust boundary. This is an explicit flag, not a
	// capability probe.
	RequireTransmissionVerification bool

	// RapidRetryWindow rejects re-submission of a symbol whose previous
	// bracket is younger than this.
	RapidRetryWindow time.Duration

	// RollbackTimeout bounds each individual leg cancel during rollback.
	RollbackTimeout time.Duration

	// DryRun validates and journals without touching the venue. Attempts
	// are recorded with SIMULATION status.
	DryRun bool
}

func DefaultConfig() Config {
	return Config{
		TransmissionTimeout: 15 * time.Second,
		RapidRetryWindow:    5 * time.Minute,
		RollbackTimeout:     5 * time.Second,
	}
}

// Request is one placement ask from the orchestrator.
type Request struct {
	Order           order.PlannedOrder
	Quantity        float64
	Commitment      float64
	FillProbability float64
	TotalCapital    float64
	Account         string
}

// Result reports one Execute call. Err is nil exactly when Success is true.
type Result struct {
	Success   bool
	AttemptID string
	OrderIDs  []int64
	Err       error
}

// Executor owns the placement protocol and the active-order book.
type Executor struct {
	venue   venue.Client
	journal journal.Journal
	book    *Book
	cfg     Config
	log     *zap.Logger
}

func New(v venue.Client, j journal.Journal, book *Book, cfg Config, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	if book == nil {
		book = NewBook()
	}
	if cfg.TransmissionTimeout <= 0 {
		cfg.TransmissionTimeout = DefaultConfig().TransmissionTimeout
	}
	if cfg.RapidRetryWindow <= 0 {
		cfg.RapidRetryWindow = DefaultConfig().RapidRetryWindow
	}
	if cfg.RollbackTimeout <= 0 {
		cfg.RollbackTimeout = DefaultConfig().RollbackTimeout
	}
	return &Executor{venue: v, journal: j, book: book, cfg: cfg, log: log}
}

// Book exposes the active-order book for the risk engine and allocator.
func (x *Executor) Book() *Book { return x.book }

// Execute runs the full placement protocol. Expected failure modes never
// escape as errors beyond the Result; unexpected panics are converted into a
// FAILED attempt with best-effort rollback of any ids already returned.
func (x *Executor) Execute(ctx context.Context, req Request) (res Result) {
	o := req.Order
	var placedIDs []int64

	defer func() {
		if r := recover(); r != nil {
			x.log.Error("execute panicked", zap.String("symbol", o.Symbol), zap.Any("panic", r))
			x.rollback(ctx, placedIDs)
			attemptID := x.recordAttempt(req, order.StatusFailed, placedIDs,
				fmt.Sprintf("internal fault: %v", r))
			res = Result{AttemptID: attemptID, Err: fmt.Errorf("internal fault: %v", r)}
		}
	}()

	// 1–2. Field and profit-target validation.
	if err := order.Validate(o); err != nil {
		return x.reject(req, err)
	}
	if err := order.ValidateProfitTarget(o); err != nil {
		return x.reject(req, err)
	}

	// 3. Connectivity.
	if !x.venue.Connected() {
		attemptID := x.recordAttempt(req, order.StatusFailed, nil, ErrNotConnected.Error())
		return Result{AttemptID: attemptID, Err: ErrNotConnected}
	}

	// 4. Margin sufficiency, delegated to the persistence collaborator.
	if ok, msg := x.journal.ValidateSufficientMargin(o.Symbol, req.Quantity, o.EntryPrice); !ok {
		return x.reject(req, fmt.Errorf("%w: %s", ErrMargin, msg))
	}

	// 5. Duplicate and partial-duplicate check.
	if m := x.duplicateCheck(ctx, o, req.Quantity); m != nil {
		return x.reject(req, fmt.Errorf("%w: %s", ErrDuplicate, m.Reason))
	}

	// 6. Rapid-retry guard.
	if x.book.RecentSubmission(o.Symbol, x.cfg.RapidRetryWindow) {
		return x.reject(req, fmt.Errorf("%w: %s submitted within %s",
			ErrRapidRetry, o.Symbol, x.cfg.RapidRetryWindow))
	}

	// Snap prices onto the venue's increment grid. Targets round up so the
	// submitted bracket is never worse than the planned risk/reward.
	vreq := venue.BracketRequest{
		Symbol:       o.Symbol,
		Action:       o.Action,
		OrderType:    o.OrderType,
		SecurityType: o.SecurityType,
		EntryPrice:   pricing.Round(o.EntryPrice),
		StopLoss:     pricing.Round(o.StopLoss),
		ProfitTarget: pricing.ProfitTarget(o),
		Quantity:     req.Quantity,
		RiskPerTrade: o.RiskPerTrade,
		RiskReward:   o.RiskReward,
		TotalCapital: req.TotalCapital,
		Account:      req.Account,
	}

	if x.cfg.DryRun {
		attemptID := x.recordAttempt(req, order.StatusSimulation, nil, "dry run: not sent to venue")
		return Result{Success: true, AttemptID: attemptID}
	}

	ids, err := x.venue.PlaceBracketOrder(ctx, vreq)
	placedIDs = ids
	if err != nil {
		x.rollback(ctx, ids)
		attemptID := x.recordAttempt(req, order.StatusFailed, ids, fmt.Sprintf("placement failed: %v", err))
		return Result{AttemptID: attemptID, OrderIDs: ids, Err: err}
	}

	bracket, err := order.NewBracketComponents(ids)
	if err != nil {
		// Partial bracket: cancel whatever the venue acknowledged and name
		// the leg that most likely never made it.
		x.rollback(ctx, ids)
		detail := fmt.Sprintf("partial bracket (%d ids, missing %s): %v", len(ids), order.MissingLeg(ids), err)
		attemptID := x.recordAttempt(req, order.StatusFailed, ids, detail)
		return Result{AttemptID: attemptID, OrderIDs: ids, Err: err}
	}

	if err := x.verifyTransmission(ctx, bracket.ParentID); err != nil {
		x.rollback(ctx, ids)
		attemptID := x.recordAttempt(req, order.StatusFailed, ids, err.Error())
		return Result{AttemptID: attemptID, OrderIDs: ids, Err: err}
	}

	execID, err := x.journal.RecordOrderExecution(journal.ExecutionRecord{
		Symbol:     o.Symbol,
		Action:     o.Action,
		Quantity:   req.Quantity,
		EntryPrice: vreq.EntryPrice,
		StopLoss:   vreq.StopLoss,
		Target:     vreq.ProfitTarget,
		Commitment: req.Commitment,
		ParentID:   bracket.ParentID,
		Account:    req.Account,
		Time:       time.Now().UTC(),
	})
	if err != nil {
		// The bracket is live; losing the execution row is an accounting
		// defect, not a trading one. Keep the order and log loudly.
		x.log.Error("record execution failed", zap.String("symbol", o.Symbol),
			zap.Int64("parent", bracket.ParentID), zap.Error(err))
	}

	x.book.Add(order.ActiveOrder{
		Symbol:          o.Symbol,
		Action:          o.Action,
		Entry:           vreq.EntryPrice,
		Stop:            vreq.StopLoss,
		Quantity:        req.Quantity,
		Strategy:        o.Strategy,
		ParentID:        bracket.ParentID,
		TakeProfitID:    bracket.TakeProfitID,
		StopLossID:      bracket.StopLossID,
		Status:          order.StatusSubmitted,
		Commitment:      req.Commitment,
		FillProbability: req.FillProbability,
		Account:         req.Account,
		SubmitTime:      time.Now(),
	})

	attemptID := x.recordAttempt(req, order.StatusSubmitted, ids,
		fmt.Sprintf("bracket live, execution %s", execID))

	x.log.Info("bracket submitted",
		zap.String("symbol", o.Symbol),
		zap.String("action", string(o.Action)),
		zap.Float64("qty", req.Quantity),
		zap.Int64s("ids", ids))
	return Result{Success: true, AttemptID: attemptID, OrderIDs: ids}
}

// verifyTransmission waits (bounded) for the venue to confirm all three legs
// transmitted. A venue without tracking is handled per configuration: either
// the placement fails, or the gap is logged as an accepted trust boundary.
func (x *Executor) verifyTransmission(ctx context.Context, parentID int64) error {
	waiter, ok := x.venue.(venue.TransmissionWaiter)
	if !ok {
		if x.cfg.RequireTransmissionVerification {
			return fmt.Errorf("%w: venue offers no transmission tracking", ErrTransmission)
		}
		x.log.Warn("transmission verification skipped: venue offers no tracking",
			zap.Int64("parent", parentID))
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, x.cfg.TransmissionTimeout)
	defer cancel()

	status, err := waiter.WaitForTransmission(waitCtx, parentID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransmission, err)
	}
	if !status.Verified || !status.ComponentsTransmitted {
		return fmt.Errorf("%w: parent %d legs not confirmed", ErrTransmission, parentID)
	}
	return nil
}

// rollback best-effort cancels every id a failed placement left behind. Each
// cancel is independent, bounded and fire-and-forget: a cancel failure is
// logged and counted but never masks the original error, and rollback always
// completes before Execute returns.
func (x *Executor) rollback(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	metrics.Rollbacks.Inc()

	for _, legID := range ids {
		// Detach from the caller's (possibly expired) deadline; rollback
		// must still run after a transmission timeout.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), x.cfg.RollbackTimeout)
		err := x.venue.CancelOrder(cctx, legID)
		cancel()
		if err != nil {
			metrics.RollbackCancelErrors.Inc()
			x.log.Error("rollback cancel failed", zap.Int64("order", legID), zap.Error(err))
		}
	}
}

// Cancel cancels a working order by id, journaling a CANCELLATION attempt on
// both sides of the venue call. It returns whether the cancel succeeded.
func (x *Executor) Cancel(ctx context.Context, orderID int64) bool {
	x.recordCancelAttempt(orderID, order.StatusSubmitting, "cancel requested")

	err := x.venue.CancelOrder(ctx, orderID)
	if err != nil {
		x.recordCancelAttempt(orderID, order.StatusFailed, err.Error())
		x.log.Warn("cancel failed", zap.Int64("order", orderID), zap.Error(err))
		return false
	}

	x.book.Remove(orderID)
	x.recordCancelAttempt(orderID, order.StatusSubmitted, "cancel confirmed")
	return true
}

func (x *Executor) reject(req Request, err error) Result {
	attemptID := x.recordAttempt(req, order.StatusRejected, nil, err.Error())
	return Result{AttemptID: attemptID, Err: err}
}

func (x *Executor) recordAttempt(req Request, status order.AttemptStatus, ids []int64, details string) string {
	a := order.ExecutionAttempt{
		ID:              id.New(),
		Type:            order.AttemptPlacement,
		Symbol:          req.Order.Symbol,
		Action:          req.Order.Action,
		FillProbability: req.FillProbability,
		Quantity:        req.Quantity,
		Commitment:      req.Commitment,
		Status:          status,
		OrderIDs:        ids,
		Details:         details,
		Account:         req.Account,
		Time:            time.Now().UTC(),
	}
	metrics.Attempts.WithLabelValues(string(a.Type), string(status)).Inc()
	if err := x.journal.RecordOrderAttempt(a); err != nil {
		x.log.Error("record attempt failed", zap.String("attempt", a.ID), zap.Error(err))
	}
	return a.ID
}

func (x *Executor) recordCancelAttempt(orderID int64, status order.AttemptStatus, details string) {
	a := order.ExecutionAttempt{
		ID:       id.New(),
		Type:     order.AttemptCancellation,
		OrderIDs: []int64{orderID},
		Status:   status,
		Details:  details,
		Time:     time.Now().UTC(),
	}
	metrics.Attempts.WithLabelValues(string(a.Type), string(status)).Inc()
	if err := x.journal.RecordOrderAttempt(a); err != nil {
		x.log.Error("record cancel attempt failed", zap.String("attempt", a.ID), zap.Error(err))
	}
}
