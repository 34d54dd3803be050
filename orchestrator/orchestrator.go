// Package orchestrator composes one execution cycle: gate the session on the
// risk engine, score and allocate the candidate pool, then run each allocated
// order through the bracket protocol. One cycle is a single atomic pass over
// a fresh snapshot; nothing carries across ticks except the journal and the
// active-order book.
package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/rustyeddy/execution/allocate"
	"github.com/rustyeddy/execution/executor"
	"github.com/rustyeddy/execution/risk"
)

// Outcome records what happened to one allocated candidate.
type Outcome struct {
	Symbol    string
	AttemptID string
	Success   bool
	Detail    string
}

// CycleReport summarizes one tick.
type CycleReport struct {
	Halted     bool
	HaltReason string

	Plan     allocate.Plan
	Outcomes []Outcome

	Executed int
	Failed   int
	Rejected int
}

type Orchestrator struct {
	risk    *risk.Engine
	alloc   *allocate.Allocator
	exec    *executor.Executor
	account string
	log     *zap.Logger
}

func New(r *risk.Engine, a *allocate.Allocator, x *executor.Executor, account string, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{risk: r, alloc: a, exec: x, account: account, log: log}
}

// Cycle runs one full pass. A risk halt is a global veto: nothing is scored,
// allocated or placed while halted.
func (o *Orchestrator) Cycle(ctx context.Context, cands []allocate.Candidate, totalCapital float64) CycleReport {
	if halted, reason := o.risk.Halted(); halted {
		o.log.Warn("cycle vetoed by risk halt", zap.String("reason", reason))
		return CycleReport{Halted: true, HaltReason: reason}
	}

	book := o.exec.Book()
	plan := o.alloc.Build(cands, totalCapital, book.Committed(), book.Count())

	report := CycleReport{Plan: plan}
	for _, c := range plan.AllocatedOrders() {
		if err := ctx.Err(); err != nil {
			break
		}

		// The risk gate runs per placement, not just per cycle: a halt or
		// exposure breach mid-cycle stops subsequent orders.
		if ok, reason := o.risk.CanPlaceOrder(&c.Order, book.Snapshot(), totalCapital); !ok {
			report.Rejected++
			report.Outcomes = append(report.Outcomes, Outcome{
				Symbol: c.Order.Symbol, Detail: reason,
			})
			continue
		}

		// CanPlaceOrder may have capped RiskPerTrade; the size the gate
		// approved is the size the venue must receive.
		c.Quantity, c.Commitment = risk.Size(c.Order, totalCapital)

		res := o.exec.Execute(ctx, executor.Request{
			Order:           c.Order,
			Quantity:        c.Quantity,
			Commitment:      c.Commitment,
			FillProbability: c.FillProbability,
			TotalCapital:    totalCapital,
			Account:         o.account,
		})

		out := Outcome{Symbol: c.Order.Symbol, AttemptID: res.AttemptID, Success: res.Success}
		if res.Err != nil {
			out.Detail = res.Err.Error()
		}
		report.Outcomes = append(report.Outcomes, out)

		if res.Success {
			report.Executed++
		} else {
			report.Failed++
		}
	}

	o.log.Info("cycle complete",
		zap.Int("candidates", len(cands)),
		zap.Int("executed", report.Executed),
		zap.Int("failed", report.Failed),
		zap.Int("rejected", report.Rejected))
	return report
}
