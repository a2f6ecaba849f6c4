package domain

import "time"

// Source records where a staged transaction originated.
type Source string

// Staging sources.
const (
	SourceSimulation   Source = "simulation"
	SourceModelTesting Source = "model_testing"
)

// PendingTransaction is a scored transaction awaiting human verification.
type PendingTransaction struct {
	ID         string
	Source     Source
	Payload    TransactionRequest
	Prediction ScoringResult
	CreatedAt  time.Time
}

// Feedback is the operator's verdict on a prediction.
//
// Callers must keep ActualLabel consistent with IsCorrect: when IsCorrect is
// true, ActualLabel equals the predicted label; when false, ActualLabel is its
// opposite. The staging store does not enforce this.
type Feedback struct {
	IsCorrect   bool
	ActualLabel Label
	Notes       string
	VerifiedBy  string
	VerifiedAt  time.Time
}

// VerifiedTransaction is a pending transaction plus its verification feedback.
type VerifiedTransaction struct {
	PendingTransaction
	Feedback Feedback
}
