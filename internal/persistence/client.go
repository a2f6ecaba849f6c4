package persistence

import (
	"context"
	"errors"
	"time"
)

// Client defines the contract for the external persistence service, which
// accepts batch inserts of flattened verified-transaction records.
type Client interface {
	InsertBatch(ctx context.Context, records []StoredTransaction) (int, error)
}

// Options configures a persistence client implementation.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ErrMissingBaseURL indicates the persistence service URL is not provided.
var ErrMissingBaseURL = errors.New("persistence base URL is required")

// ErrPersistence wraps transport and validation failures from the
// persistence service. A failed commit leaves the staging store untouched,
// so the whole batch is safely retryable.
var ErrPersistence = errors.New("persistence service failure")
