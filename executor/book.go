package executor

import (
	"sync"
	"time"

	"github.com/rustyeddy/execution/order"
)

// Book is the mutex-guarded set of active orders owned by the executor. It
// answers the questions other subsystems ask about the working set: committed
// capital, occupied slots and recent submissions for the rapid-retry guard.
type Book struct {
	mu     sync.Mutex
	orders map[int64]*order.ActiveOrder
}

func NewBook() *Book {
	return &Book{orders: make(map[int64]*order.ActiveOrder)}
}

func (b *Book) Add(a order.ActiveOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[a.ParentID] = &a
}

// Remove drops a bracket from the book when it reaches a terminal state
// (fill, cancel or liquidation).
func (b *Book) Remove(parentID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.orders, parentID)
}

// Snapshot returns a copy of every active order.
func (b *Book) Snapshot() []order.ActiveOrder {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]order.ActiveOrder, 0, len(b.orders))
	for _, a := range b.orders {
		out = append(out, *a)
	}
	return out
}

func (b *Book) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

// Committed sums capital commitment over all active orders.
func (b *Book) Committed() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total float64
	for _, a := range b.orders {
		total += a.Commitment
	}
	return total
}

// RecentSubmission reports whether the symbol has an order in SUBMITTING or
// SUBMITTED state younger than the window. Guards against rapid retries
// duplicating an economic position before the venue reports the first one.
func (b *Book) RecentSubmission(symbol string, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := time.Now().Add(-window)
	for _, a := range b.orders {
		if a.Symbol != symbol {
			continue
		}
		if a.Status != order.StatusSubmitting && a.Status != order.StatusSubmitted {
			continue
		}
		if a.SubmitTime.After(cutoff) {
			return true
		}
	}
	return false
}
