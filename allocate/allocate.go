// Package allocate turns a pool of scored candidates into a capital- and
// slot-constrained execution plan. The loop is a single-pass greedy
// approximation, not an optimal knapsack: cycles run sub-second over dozens
// of candidates and ties break by scan order.
package allocate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/rustyeddy/execution/order"
	"github.com/rustyeddy/execution/risk"
	"github.com/rustyeddy/execution/scoring"
)

const (
	ReasonMaxOpenOrders       = "max open orders reached"
	ReasonInsufficientCapital = "Insufficient capital"
	ReasonNotSizable          = "not sizable"
)

// Candidate is one planned order moving through a cycle: sized, scored and
// finally allocated or skipped. It is ephemeral per cycle.
type Candidate struct {
	Order           order.PlannedOrder
	FillProbability float64

	Quantity   float64
	Commitment float64
	Components scoring.Components
	Score      float64

	// Viable is false only when the candidate cannot be sized at all. Fill
	// probability never clears it.
	Viable bool

	Allocated bool
	Reason    string
}

// Plan is the outcome of one allocation pass.
type Plan struct {
	Candidates []*Candidate

	TotalCommitted   float64
	AvailableCapital float64
	AvailableSlots   int
}

// AllocatedOrders returns the candidates selected for execution, in score
// order.
func (p Plan) AllocatedOrders() []*Candidate {
	var out []*Candidate
	for _, c := range p.Candidates {
		if c.Allocated {
			out = append(out, c)
		}
	}
	return out
}

// Allocator ranks and selects candidates. TwoLayer selects the quality-score
// ranking (the default); legacy mode folds fill probability into the score.
type Allocator struct {
	Scorer         *scoring.Scorer
	MaxOpenOrders  int
	MaxUtilization float64
	TwoLayer       bool
	Log            *zap.Logger
}

func New(s *scoring.Scorer, maxOpen int, maxUtil float64, twoLayer bool, log *zap.Logger) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{Scorer: s, MaxOpenOrders: maxOpen, MaxUtilization: maxUtil,
		TwoLayer: twoLayer, Log: log}
}

// Build sizes, scores and greedily allocates one fresh candidate snapshot.
// alreadyCommitted is the capital tied up in working orders; workingCount is
// how many execution slots those orders occupy.
func (a *Allocator) Build(cands []Candidate, totalCapital, alreadyCommitted float64, workingCount int) Plan {
	plan := Plan{
		AvailableCapital: totalCapital*a.MaxUtilization - alreadyCommitted,
		AvailableSlots:   a.MaxOpenOrders - workingCount,
	}
	if plan.AvailableCapital < 0 {
		plan.AvailableCapital = 0
	}
	if plan.AvailableSlots < 0 {
		plan.AvailableSlots = 0
	}

	scored := make([]*Candidate, 0, len(cands))
	for i := range cands {
		c := cands[i]
		c.Quantity, c.Commitment = risk.Size(c.Order, totalCapital)
		c.Components = a.Scorer.Components(c.Order, c.Quantity, c.Commitment, totalCapital)
		c.Viable = c.Quantity > 0
		if !c.Viable {
			c.Reason = ReasonNotSizable
		}
		scored = append(scored, &c)
	}

	if a.TwoLayer {
		for _, c := range scored {
			c.Score = a.Scorer.QualityScore(c.Components)
		}
	} else {
		effs := make([]float64, len(scored))
		for i, c := range scored {
			effs[i] = c.Components.Efficiency
		}
		norm := scoring.MinMaxNormalize(effs)
		for i, c := range scored {
			c.Score = a.Scorer.LegacyScore(c.Components, c.FillProbability, norm[i])
		}
	}

	// Stable sort keeps scan order on ties.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	allocated := 0
	running := 0.0
	for _, c := range scored {
		if !c.Viable {
			continue
		}
		if allocated >= plan.AvailableSlots {
			c.Reason = ReasonMaxOpenOrders
			continue
		}
		if running+c.Commitment > plan.AvailableCapital {
			c.Reason = ReasonInsufficientCapital
			continue
		}
		c.Allocated = true
		allocated++
		running += c.Commitment
	}

	plan.Candidates = scored
	plan.TotalCommitted = running

	a.Log.Debug("allocation pass complete",
		zap.Int("candidates", len(scored)),
		zap.Int("allocated", allocated),
		zap.Float64("committed", running),
		zap.Float64("available", plan.AvailableCapital))
	return plan
}
