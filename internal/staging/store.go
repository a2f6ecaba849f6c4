package staging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// ErrDuplicateID is returned when a batch tries to stage a transaction id
// that is already present in the store.
var ErrDuplicateID = errors.New("transaction id already staged")

type entryStatus int

const (
	statusPending entryStatus = iota
	statusVerified
)

// entry is one staged transaction. Instead of two separate collections the
// store keeps a single map keyed by id with a status tag, so an id can never
// be observed in both states or in neither.
type entry struct {
	seq      uint64
	status   entryStatus
	item     domain.PendingTransaction
	feedback domain.Feedback
}

// Store holds scored transactions through the verify lifecycle. All mutations
// are serialized behind one mutex; readers receive snapshots taken between
// discrete mutation points.
type Store struct {
	mu            sync.Mutex
	items         map[string]*entry
	nextSeq       uint64
	pendingCount  int
	verifiedCount int
	nowFn         func() time.Time
}

// NewStore returns an empty staging store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]*entry),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// AddPendingBatch stages the given items in call order. A duplicate id is a
// caller contract violation: the whole batch is rejected and the store is
// left unchanged.
func (s *Store) AddPendingBatch(items []domain.PendingTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, exists := s.items[item.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	for _, item := range items {
		s.nextSeq++
		s.items[item.ID] = &entry{
			seq:    s.nextSeq,
			status: statusPending,
			item:   item,
		}
		s.pendingCount++
	}
	return nil
}

// Verify moves a pending transaction into the verified state, attaching
// feedback with a server-side timestamp. An id that is absent or already
// verified makes the call a no-op, so verifying twice is safe; the return
// value reports whether the item moved.
//
// Callers must keep actualLabel consistent with isCorrect: equal to the
// predicted label when the prediction was correct, its opposite otherwise.
// The store records what it is given.
func (s *Store) Verify(id string, isCorrect bool, actualLabel domain.Label, notes, verifiedBy string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok || e.status != statusPending {
		return false
	}

	e.status = statusVerified
	e.feedback = domain.Feedback{
		IsCorrect:   isCorrect,
		ActualLabel: actualLabel,
		Notes:       notes,
		VerifiedBy:  verifiedBy,
		VerifiedAt:  s.nowFn(),
	}
	s.pendingCount--
	s.verifiedCount++
	return true
}

// ClearVerified removes the given ids from the verified state. Unknown or
// still-pending ids are ignored.
func (s *Store) ClearVerified(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		e, ok := s.items[id]
		if !ok || e.status != statusVerified {
			continue
		}
		delete(s.items, id)
		s.verifiedCount--
	}
}

// GetPending looks up a single pending transaction by id.
func (s *Store) GetPending(id string) (domain.PendingTransaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok || e.status != statusPending {
		return domain.PendingTransaction{}, false
	}
	return e.item, true
}

// PendingCount reports the number of transactions awaiting verification.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingCount
}

// VerifiedCount reports the number of verified transactions awaiting commit.
func (s *Store) VerifiedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifiedCount
}

// Pending returns the pending transactions in insertion order.
func (s *Store) Pending() []domain.PendingTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.collect(statusPending)
	out := make([]domain.PendingTransaction, len(entries))
	for i, e := range entries {
		out[i] = e.item
	}
	return out
}

// Verified returns the verified transactions in insertion order.
func (s *Store) Verified() []domain.VerifiedTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.collect(statusVerified)
	out := make([]domain.VerifiedTransaction, len(entries))
	for i, e := range entries {
		out[i] = domain.VerifiedTransaction{
			PendingTransaction: e.item,
			Feedback:           e.feedback,
		}
	}
	return out
}

// collect snapshots entries with the given status ordered by insertion.
// Callers must hold the mutex.
func (s *Store) collect(status entryStatus) []*entry {
	var entries []*entry
	for _, e := range s.items {
		if e.status == status {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}
