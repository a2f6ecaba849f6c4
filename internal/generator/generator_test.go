package generator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

func fraudCount(requests []domain.TransactionRequest) int {
	count := 0
	for _, req := range requests {
		if req.KYCVerified == "No" {
			count++
		}
	}
	return count
}

func TestGenerate_ExactQuota(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		gen := New(Config{BatchSize: 100, TargetRate: 0.12, Seed: seed})
		batch, err := gen.Generate(context.Background())
		if err != nil {
			t.Fatalf("seed %d: expected no error, got %v", seed, err)
		}
		if len(batch.Requests) != 100 {
			t.Fatalf("seed %d: expected 100 requests, got %d", seed, len(batch.Requests))
		}
		if got := fraudCount(batch.Requests); got != 12 {
			t.Fatalf("seed %d: expected exactly 12 fraud-patterned requests, got %d", seed, got)
		}
		if batch.FraudCount != 12 {
			t.Fatalf("seed %d: reported fraud count %d, want 12", seed, batch.FraudCount)
		}
	}
}

func TestGenerate_ExactQuotaAcrossSizes(t *testing.T) {
	cases := []struct {
		batchSize int
		rate      float64
	}{
		{1, 0.09},
		{1, 0.15},
		{7, 0.14},
		{10, 0.10},
		{23, 0.13},
		{100, 0.09},
		{250, 0.15},
		{999, 0.11},
	}

	for _, tc := range cases {
		for seed := int64(1); seed <= 5; seed++ {
			gen := New(Config{BatchSize: tc.batchSize, TargetRate: tc.rate, Seed: seed})
			batch, err := gen.Generate(context.Background())
			if err != nil {
				t.Fatalf("batchSize=%d rate=%v seed=%d: %v", tc.batchSize, tc.rate, seed, err)
			}
			want := int(math.Floor(float64(tc.batchSize) * tc.rate))
			if got := fraudCount(batch.Requests); got != want {
				t.Fatalf("batchSize=%d rate=%v seed=%d: expected %d fraud requests, got %d",
					tc.batchSize, tc.rate, seed, want, got)
			}
		}
	}
}

func TestGenerate_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		gen := New(Config{BatchSize: size, TargetRate: 0.12, Seed: 1})
		_, err := gen.Generate(context.Background())
		if !errors.Is(err, ErrInvalidBatchSize) {
			t.Fatalf("batchSize=%d: expected ErrInvalidBatchSize, got %v", size, err)
		}
	}
}

func TestGenerate_InvalidTargetRate(t *testing.T) {
	for _, rate := range []float64{0.05, 0.2, 1.0, -0.1} {
		gen := New(Config{BatchSize: 10, TargetRate: rate, Seed: 1})
		_, err := gen.Generate(context.Background())
		if !errors.Is(err, ErrInvalidTargetRate) {
			t.Fatalf("rate=%v: expected ErrInvalidTargetRate, got %v", rate, err)
		}
	}
}

func TestGenerate_ZeroRateDrawnWithinBounds(t *testing.T) {
	gen := New(Config{BatchSize: 50, Seed: 7})
	if rate := gen.TargetRate(); rate < MinTargetRate || rate > MaxTargetRate {
		t.Fatalf("drawn rate %v outside [%v, %v]", rate, MinTargetRate, MaxTargetRate)
	}

	batch, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := int(math.Floor(50 * batch.TargetRate))
	if got := fraudCount(batch.Requests); got != want {
		t.Fatalf("expected %d fraud requests for drawn rate %v, got %d", want, batch.TargetRate, got)
	}
}

func TestGenerate_FraudItemsMatchArchetypes(t *testing.T) {
	gen := New(Config{BatchSize: 200, TargetRate: 0.15, Seed: 3})
	batch, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	lateNight := map[int]bool{22: true, 23: true, 0: true, 1: true, 2: true, 3: true, 4: true, 5: true}
	for _, req := range batch.Requests {
		if req.KYCVerified != "No" {
			continue
		}
		if !lateNight[req.Hour] {
			t.Errorf("fraud request %s has hour %d outside the late-night window", req.ID, req.Hour)
		}
		if req.Amount < 3000 {
			t.Errorf("fraud request %s has amount %.2f below every archetype minimum", req.ID, req.Amount)
		}
		if req.AccountAgeDays < 1 || req.AccountAgeDays > 180 {
			t.Errorf("fraud request %s has account age %d outside archetype ranges", req.ID, req.AccountAgeDays)
		}
	}
}

func TestGenerate_LegitimateItemsInRange(t *testing.T) {
	gen := New(Config{BatchSize: 200, TargetRate: 0.09, Seed: 11})
	batch, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, req := range batch.Requests {
		if req.KYCVerified != "Yes" {
			continue
		}
		if req.Hour < legitMinHour || req.Hour > legitMaxHour {
			t.Errorf("legitimate request %s has hour %d outside business hours", req.ID, req.Hour)
		}
		if req.Amount < legitMinAmount || req.Amount > legitMaxAmount {
			t.Errorf("legitimate request %s has amount %.2f outside the modest range", req.ID, req.Amount)
		}
		if req.AccountAgeDays < legitMinAccountAge || req.AccountAgeDays > legitMaxAccountAge {
			t.Errorf("legitimate request %s has account age %d outside the established range", req.ID, req.AccountAgeDays)
		}
	}
}

func TestGenerate_UniqueIDs(t *testing.T) {
	gen := New(Config{BatchSize: 500, TargetRate: 0.12, Seed: 5})
	batch, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	seen := make(map[string]struct{}, len(batch.Requests))
	for _, req := range batch.Requests {
		if _, dup := seen[req.ID]; dup {
			t.Fatalf("duplicate request id %s", req.ID)
		}
		seen[req.ID] = struct{}{}
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := New(Config{BatchSize: 10, TargetRate: 0.12, Seed: 1})
	_, err := gen.Generate(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerate_NoCrossRunLeakage(t *testing.T) {
	// Two generators with the same seed produce identical fraud placement;
	// running one must not disturb the other.
	first := New(Config{BatchSize: 40, TargetRate: 0.1, Seed: 9})
	second := New(Config{BatchSize: 40, TargetRate: 0.1, Seed: 9})

	a, err := first.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, err := second.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i := range a.Requests {
		if (a.Requests[i].KYCVerified == "No") != (b.Requests[i].KYCVerified == "No") {
			t.Fatalf("fraud placement diverged at index %d for identical seeds", i)
		}
	}
}
