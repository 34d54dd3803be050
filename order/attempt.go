package order

import "time"

// AttemptStatus is the terminal classification of an execution attempt.
type AttemptStatus string

const (
	StatusSubmitting AttemptStatus = "SUBMITTING"
	StatusSubmitted  AttemptStatus = "SUBMITTED"
	StatusFailed     AttemptStatus = "FAILED"
	StatusRejected   AttemptStatus = "REJECTED"
	StatusSimulation AttemptStatus = "SIMULATION"
)

// AttemptType names what kind of operation the attempt records.
type AttemptType string

const (
	AttemptPlacement    AttemptType = "PLACEMENT"
	AttemptCancellation AttemptType = "CANCELLATION"
)

// ExecutionAttempt is one append-only audit record. Attempts are created by
// the executor, journaled before the call returns, and never mutated.
type ExecutionAttempt struct {
	ID   string
	Type AttemptType

	Symbol          string
	Action          Action
	FillProbability float64
	Quantity        float64
	Commitment      float64

	Status   AttemptStatus
	OrderIDs []int64
	Details  string
	Account  string
	Time     time.Time
}
