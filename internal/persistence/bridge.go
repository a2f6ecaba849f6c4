package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// StoredTransaction is the flattened record shape accepted by the persistence
// service's batch insert endpoint.
type StoredTransaction struct {
	TransactionID  string    `json:"transaction_id"`
	CustomerID     string    `json:"customer_id"`
	Amount         float64   `json:"amount"`
	AccountAgeDays int       `json:"account_age_days"`
	Channel        string    `json:"channel"`
	KYCVerified    string    `json:"kyc_verified"`
	Hour           int       `json:"hour"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
	Prediction     string    `json:"prediction"`
	RiskScore      float64   `json:"risk_score"`
	Confidence     float64   `json:"confidence"`
	RiskLevel      string    `json:"risk_level"`
	IsCorrect      bool      `json:"is_correct"`
	ActualLabel    string    `json:"actual_label"`
	Notes          string    `json:"notes,omitempty"`
	VerifiedBy     string    `json:"verified_by,omitempty"`
	VerifiedAt     time.Time `json:"verified_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// CommitResult reports a confirmed batch commit.
type CommitResult struct {
	StoredCount int
	IDs         []string
}

// Bridge maps verified transactions to the external storage schema and
// commits them in bulk. The bridge never touches the staging store: after a
// confirmed success the caller clears exactly the committed ids.
type Bridge struct {
	client Client
	logger *slog.Logger
}

// NewBridge constructs a Bridge over the given persistence client.
func NewBridge(logger *slog.Logger, client Client) *Bridge {
	return &Bridge{
		client: client,
		logger: logger,
	}
}

// Commit stores the whole batch. On any failure the error is returned and
// nothing is considered committed.
func (b *Bridge) Commit(ctx context.Context, batch []domain.VerifiedTransaction) (CommitResult, error) {
	if len(batch) == 0 {
		return CommitResult{IDs: []string{}}, nil
	}

	records := make([]StoredTransaction, len(batch))
	ids := make([]string, len(batch))
	for i, v := range batch {
		records[i] = Transform(v)
		ids[i] = v.ID
	}

	stored, err := b.client.InsertBatch(ctx, records)
	if err != nil {
		return CommitResult{}, err
	}

	if stored != len(records) {
		b.logger.Warn("persistence service stored fewer records than sent",
			"sent", len(records),
			"stored", stored,
		)
	}

	return CommitResult{StoredCount: stored, IDs: ids}, nil
}

// Transform maps one verified transaction to the storage schema. It is pure:
// no side effects, no mutation of the input.
func Transform(v domain.VerifiedTransaction) StoredTransaction {
	return StoredTransaction{
		TransactionID:  v.ID,
		CustomerID:     v.Payload.CustomerID,
		Amount:         v.Payload.Amount,
		AccountAgeDays: v.Payload.AccountAgeDays,
		Channel:        string(v.Payload.Channel),
		KYCVerified:    v.Payload.KYCVerified,
		Hour:           v.Payload.Hour,
		Timestamp:      v.Payload.Timestamp,
		Source:         string(v.Source),
		Prediction:     string(v.Prediction.PredictedLabel),
		RiskScore:      v.Prediction.RiskScore,
		Confidence:     v.Prediction.Confidence,
		RiskLevel:      string(v.Prediction.RiskLevel),
		IsCorrect:      v.Feedback.IsCorrect,
		ActualLabel:    string(v.Feedback.ActualLabel),
		Notes:          v.Feedback.Notes,
		VerifiedBy:     v.Feedback.VerifiedBy,
		VerifiedAt:     v.Feedback.VerifiedAt,
		CreatedAt:      v.CreatedAt,
	}
}
