package persistence

import (
	"context"
	"sync"
)

// MemoryClient is an in-memory implementation of the Client interface used
// for unit testing commit logic without a running persistence service.
type MemoryClient struct {
	mu      sync.Mutex
	batches [][]StoredTransaction
	err     error
}

// NewMemoryClient instantiates the in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to fail every InsertBatch call with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MemoryClient) InsertBatch(_ context.Context, records []StoredTransaction) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	batch := append([]StoredTransaction(nil), records...)
	m.batches = append(m.batches, batch)
	return len(records), nil
}

// Batches returns a snapshot of every batch inserted so far.
func (m *MemoryClient) Batches() [][]StoredTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]StoredTransaction, len(m.batches))
	copy(out, m.batches)
	return out
}

// Stored returns the total number of records inserted across all batches.
func (m *MemoryClient) Stored() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, b := range m.batches {
		total += len(b)
	}
	return total
}
