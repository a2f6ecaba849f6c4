package domain

import "time"

// DispatchStatus is the lifecycle state of a dispatched request.
type DispatchStatus string

// Dispatch record states. A record moves from pending to exactly one of the
// terminal states and is never mutated again.
const (
	DispatchPending DispatchStatus = "pending"
	DispatchSuccess DispatchStatus = "success"
	DispatchError   DispatchStatus = "error"
)

// DispatchRecord captures the per-item outcome of sending one request to the
// scoring service. Result is set only on success, Error only on error.
type DispatchRecord struct {
	ID          string
	Request     TransactionRequest
	Status      DispatchStatus
	Result      *ScoringResult
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}
