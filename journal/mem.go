package journal

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rustyeddy/execution/order"
)

// MemJournal keeps everything in memory. Used by tests and simulation runs
// where nothing should touch disk.
type MemJournal struct {
	mu         sync.Mutex
	Executions []ExecutionRecord
	Attempts   []order.ExecutionAttempt
	PnL        []PnLRecord

	FreeMargin float64

	// FailAttempts and FailPnL force errors, to test best-effort paths.
	FailAttempts bool
	FailPnL      bool
}

func NewMem(freeMargin float64) *MemJournal {
	return &MemJournal{FreeMargin: freeMargin}
}

func (m *MemJournal) RecordOrderExecution(r ExecutionRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ExecutionID == "" {
		r.ExecutionID = uuid.NewString()
	}
	m.Executions = append(m.Executions, r)
	return r.ExecutionID, nil
}

func (m *MemJournal) RecordOrderAttempt(a order.ExecutionAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAttempts {
		return fmt.Errorf("mem journal: attempt write refused")
	}
	m.Attempts = append(m.Attempts, a)
	return nil
}

func (m *MemJournal) ValidateSufficientMargin(symbol string, qty, price float64) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	need := qty * price
	if need <= m.FreeMargin {
		return true, ""
	}
	return false, fmt.Sprintf("insufficient margin for %s: need %.2f, free %.2f", symbol, need, m.FreeMargin)
}

func (m *MemJournal) RealizedPnLPeriod(days int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	since := time.Now().UTC().AddDate(0, 0, -days)
	var total float64
	for _, r := range m.PnL {
		if !r.ExitDate.Before(since) {
			total += r.PnL
		}
	}
	return total, nil
}

func (m *MemJournal) RecordRealizedPnL(r PnLRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPnL {
		return fmt.Errorf("mem journal: pnl write refused")
	}
	if r.ExitDate.IsZero() {
		r.ExitDate = time.Now().UTC()
	}
	m.PnL = append(m.PnL, r)
	return nil
}

// LastAttempt returns the most recent attempt, or nil when none exist.
func (m *MemJournal) LastAttempt() *order.ExecutionAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Attempts) == 0 {
		return nil
	}
	a := m.Attempts[len(m.Attempts)-1]
	return &a
}

func (m *MemJournal) Close() error { return nil }

var _ Journal = (*MemJournal)(nil)
