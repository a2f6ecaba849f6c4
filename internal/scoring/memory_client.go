package scoring

import (
	"context"
	"sync"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// MemoryClient is an in-memory implementation of the Client interface used
// for unit testing dispatch logic without a running scoring service.
type MemoryClient struct {
	mu      sync.Mutex
	calls   []domain.TransactionRequest
	scoreFn func(req domain.TransactionRequest) (domain.ScoringResult, error)
	err     error
	health  error
}

// NewMemoryClient instantiates the in-memory client. By default it scores via
// the local rule scorer.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to fail every Score call with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithHealthError forces Healthy to return the supplied error.
func (m *MemoryClient) WithHealthError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = err
	return m
}

// WithScoreFunc overrides the scoring behaviour per request.
func (m *MemoryClient) WithScoreFunc(fn func(req domain.TransactionRequest) (domain.ScoringResult, error)) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreFn = fn
	return m
}

func (m *MemoryClient) Score(ctx context.Context, req domain.TransactionRequest) (domain.ScoringResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	err := m.err
	fn := m.scoreFn
	m.mu.Unlock()

	if err != nil {
		return domain.ScoringResult{}, err
	}
	if fn != nil {
		return fn(req)
	}
	return RuleScorer{}.Score(ctx, req)
}

func (m *MemoryClient) Healthy(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// Calls returns a snapshot of the requests scored so far.
func (m *MemoryClient) Calls() []domain.TransactionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TransactionRequest(nil), m.calls...)
}
