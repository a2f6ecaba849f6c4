package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// Client defines the minimal contract required to obtain fraud scores from
// the external scoring service.
type Client interface {
	Score(ctx context.Context, req domain.TransactionRequest) (domain.ScoringResult, error)
	Healthy(ctx context.Context) error
}

// Options configures a scoring client implementation.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ErrMissingBaseURL indicates the scoring service URL is not provided.
var ErrMissingBaseURL = errors.New("scoring base URL is required")
