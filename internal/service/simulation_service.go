package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kavya/transintelliflow/backend/internal/dispatcher"
	"github.com/kavya/transintelliflow/backend/internal/domain"
	"github.com/kavya/transintelliflow/backend/internal/generator"
	"github.com/kavya/transintelliflow/backend/internal/metrics"
	"github.com/kavya/transintelliflow/backend/internal/persistence"
	"github.com/kavya/transintelliflow/backend/internal/staging"
)

// RunParams configures one operator-triggered simulation run.
type RunParams struct {
	BatchSize   int
	Concurrency int
	TargetRate  float64 // 0 draws one per run within generator bounds
	Seed        int64
	Source      domain.Source
}

// RunSummary reports the outcome of a completed run.
type RunSummary struct {
	RunID          string
	BatchSize      int
	TargetRate     float64
	FraudGenerated int
	Succeeded      int
	Failed         int
	StagedCount    int
	StartedAt      time.Time
	Duration       time.Duration
}

// SimulationService drives the synthetic workload pipeline: generate a quota
// batch, dispatch it to the scoring service, stage successful results, and
// move staged items through the verify and commit lifecycle.
type SimulationService struct {
	scorer  dispatcher.Scorer
	store   *staging.Store
	bridge  *persistence.Bridge
	metrics metrics.Collector
	logger  *slog.Logger
	nowFn   func() time.Time
}

// NewSimulationService wires the pipeline components together.
func NewSimulationService(logger *slog.Logger, scorer dispatcher.Scorer, store *staging.Store, bridge *persistence.Bridge, collector metrics.Collector) *SimulationService {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &SimulationService{
		scorer:  scorer,
		store:   store,
		bridge:  bridge,
		metrics: collector,
		logger:  logger,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one generate-dispatch-stage cycle. Error-status records are
// reported in the summary and dropped; only successful records are staged.
func (s *SimulationService) Run(ctx context.Context, params RunParams) (RunSummary, error) {
	runID := uuid.NewString()
	startedAt := s.nowFn()
	source := params.Source
	if source == "" {
		source = domain.SourceSimulation
	}

	gen := generator.New(generator.Config{
		BatchSize:  params.BatchSize,
		TargetRate: params.TargetRate,
		Seed:       params.Seed,
	})
	batch, err := gen.Generate(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("generate batch: %w", err)
	}

	d := dispatcher.New(s.scorer, params.Concurrency)
	d.OnProgress = func(completed, total int) {
		s.logger.Debug("dispatch progress", "runId", runID, "completed", completed, "total", total)
	}

	records, err := d.Dispatch(ctx, batch.Requests)
	if err != nil {
		return RunSummary{}, fmt.Errorf("dispatch batch: %w", err)
	}

	createdAt := s.nowFn()
	var pending []domain.PendingTransaction
	succeeded, failed := 0, 0
	for i := range records {
		rec := &records[i]
		if rec.CompletedAt != nil {
			s.metrics.ObserveDispatch(string(rec.Status), rec.CompletedAt.Sub(rec.StartedAt))
		}
		switch rec.Status {
		case domain.DispatchSuccess:
			succeeded++
			pending = append(pending, domain.PendingTransaction{
				ID:         rec.ID,
				Source:     source,
				Payload:    rec.Request,
				Prediction: *rec.Result,
				CreatedAt:  createdAt,
			})
		case domain.DispatchError:
			failed++
			s.logger.Warn("scoring call failed",
				"runId", runID,
				"transactionId", rec.ID,
				"error", rec.Error,
			)
		}
	}

	if err := s.store.AddPendingBatch(pending); err != nil {
		return RunSummary{}, fmt.Errorf("stage scored batch: %w", err)
	}

	duration := s.nowFn().Sub(startedAt)
	s.metrics.ObserveRun(params.BatchSize, duration)
	s.publishStagingCounts()

	summary := RunSummary{
		RunID:          runID,
		BatchSize:      params.BatchSize,
		TargetRate:     batch.TargetRate,
		FraudGenerated: batch.FraudCount,
		Succeeded:      succeeded,
		Failed:         failed,
		StagedCount:    len(pending),
		StartedAt:      startedAt,
		Duration:       duration,
	}

	s.logger.Info("simulation run completed",
		"runId", runID,
		"batchSize", summary.BatchSize,
		"fraudGenerated", summary.FraudGenerated,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"durationMs", duration.Milliseconds(),
	)
	return summary, nil
}

// VerifyTransaction records operator feedback on a pending transaction and
// moves it to the verified state. When actualLabel is empty it is derived
// from the prediction, keeping the label-correction contract: equal to the
// predicted label when correct, its opposite otherwise. A missing id is a
// no-op and returns false.
func (s *SimulationService) VerifyTransaction(id string, isCorrect bool, actualLabel domain.Label, notes, verifiedBy string) bool {
	if actualLabel == "" {
		item, ok := s.store.GetPending(id)
		if !ok {
			return false
		}
		actualLabel = item.Prediction.PredictedLabel
		if !isCorrect {
			actualLabel = actualLabel.Opposite()
		}
	}

	moved := s.store.Verify(id, isCorrect, actualLabel, notes, verifiedBy)
	if moved {
		s.publishStagingCounts()
	}
	return moved
}

// CommitVerified sends every verified transaction to the persistence service
// and, only after confirmed success, clears exactly the committed ids. On
// failure the verified set is untouched and the commit is safely retryable.
func (s *SimulationService) CommitVerified(ctx context.Context) (persistence.CommitResult, error) {
	batch := s.store.Verified()
	result, err := s.bridge.Commit(ctx, batch)
	if err != nil {
		s.logger.Error("verified batch commit failed", "batchSize", len(batch), "error", err)
		return persistence.CommitResult{}, err
	}

	s.store.ClearVerified(result.IDs)
	s.metrics.AddCommitted(result.StoredCount)
	s.publishStagingCounts()

	s.logger.Info("verified batch committed", "storedCount", result.StoredCount)
	return result, nil
}

// PendingTransactions returns the pending items in insertion order.
func (s *SimulationService) PendingTransactions() []domain.PendingTransaction {
	return s.store.Pending()
}

// VerifiedTransactions returns the verified items in insertion order.
func (s *SimulationService) VerifiedTransactions() []domain.VerifiedTransaction {
	return s.store.Verified()
}

// StagingCounts reports the current pending and verified sizes.
func (s *SimulationService) StagingCounts() (pending, verified int) {
	return s.store.PendingCount(), s.store.VerifiedCount()
}

func (s *SimulationService) publishStagingCounts() {
	s.metrics.SetStagingCounts(s.store.PendingCount(), s.store.VerifiedCount())
}
