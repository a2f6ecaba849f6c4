package dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// ErrInvalidConcurrency is returned when the worker count is below 1.
var ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

// Scorer is the scoring-service contract required by the dispatcher.
type Scorer interface {
	Score(ctx context.Context, req domain.TransactionRequest) (domain.ScoringResult, error)
}

// Dispatcher sends transaction requests to the scoring service using a
// fixed-size worker pool draining a shared queue. In-flight calls never exceed
// the configured concurrency, and a slow item only holds back its own worker.
type Dispatcher struct {
	scorer      Scorer
	concurrency int

	// OnProgress, when set, is invoked after every completed item with the
	// running completed count and the batch size. Calls are serialized, so
	// the completed count observed by the callback never decreases.
	OnProgress func(completed, total int)

	progressMu sync.Mutex
	completed  int
}

// New constructs a Dispatcher around the provided scorer.
func New(scorer Scorer, concurrency int) *Dispatcher {
	return &Dispatcher{
		scorer:      scorer,
		concurrency: concurrency,
	}
}

// Dispatch scores every request and returns one record per request, in input
// order regardless of completion order. A per-item failure is captured on its
// record and never aborts the batch; there are no retries at this layer.
//
// Cancellation is observed between items: on a cancelled context the feed
// stops, in-flight calls finish, unclaimed records stay pending and the
// context error is returned alongside the records produced so far.
func (d *Dispatcher) Dispatch(ctx context.Context, requests []domain.TransactionRequest) ([]domain.DispatchRecord, error) {
	if d.concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}

	records := make([]domain.DispatchRecord, len(requests))
	for i, req := range requests {
		records[i] = domain.DispatchRecord{
			ID:      req.ID,
			Request: req,
			Status:  domain.DispatchPending,
		}
	}
	if len(requests) == 0 {
		return records, nil
	}

	d.progressMu.Lock()
	d.completed = 0
	d.progressMu.Unlock()

	indexCh := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			d.scoreOne(ctx, &records[idx], len(requests))
		}
	}

	workers := d.concurrency
	if workers > len(requests) {
		workers = len(requests)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < len(requests); i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// scoreOne moves a single record from pending to its terminal status.
func (d *Dispatcher) scoreOne(ctx context.Context, rec *domain.DispatchRecord, total int) {
	rec.StartedAt = time.Now().UTC()

	result, err := d.scorer.Score(ctx, rec.Request)
	completedAt := time.Now().UTC()
	rec.CompletedAt = &completedAt

	if err != nil {
		rec.Status = domain.DispatchError
		rec.Error = err.Error()
	} else {
		rec.Status = domain.DispatchSuccess
		rec.Result = &result
	}

	d.progressMu.Lock()
	d.completed++
	completed := d.completed
	if d.OnProgress != nil {
		d.OnProgress(completed, total)
	}
	d.progressMu.Unlock()
}
